package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chukul/cloudtop/internal/actions"
	"github.com/chukul/cloudtop/internal/catalog"
	"github.com/chukul/cloudtop/internal/dispatch"
)

func newTestModel() *Model {
	return &Model{
		registry: &catalog.Registry{},
		stack:    []view{newPickerView(&catalog.Registry{}, "")},
	}
}

func TestPopRefusesToEmptyTheStack(t *testing.T) {
	m := newTestModel()
	if m.pop() {
		t.Fatalf("expected pop on a single-element stack to fail")
	}
	if len(m.stack) != 1 {
		t.Fatalf("expected the root view to remain")
	}

	m.push(&helpView{})
	if !m.pop() {
		t.Fatalf("expected pop to succeed once a second view is pushed")
	}
	if _, ok := m.top().(*pickerView); !ok {
		t.Fatalf("expected the picker view to be back on top")
	}
}

func TestHandleFetchResultDropsStaleGeneration(t *testing.T) {
	m := newTestModel()
	tv := newTableView(testDescriptor(), nil)
	tv.loading = true
	m.stack = []view{tv}
	m.generation = 2

	m.handleFetchResult(fetchResultMsg{generation: 1, page: dispatch.Page{Rows: []dispatch.Row{{Columns: []string{"x"}}}}})

	if !tv.loading {
		t.Fatalf("a stale-generation result should not clear loading")
	}
	if len(tv.rows) != 0 {
		t.Fatalf("a stale-generation result should not populate rows")
	}
}

func TestHandleFetchResultAppliesCurrentGeneration(t *testing.T) {
	m := newTestModel()
	tv := newTableView(testDescriptor(), nil)
	tv.loading = true
	m.stack = []view{tv}

	page := dispatch.Page{Rows: []dispatch.Row{{Columns: []string{"i-1", "running"}}}, NextToken: "tok"}
	m.handleFetchResult(fetchResultMsg{generation: 0, page: page})

	if tv.loading {
		t.Fatalf("expected loading to clear on a matching-generation result")
	}
	if len(tv.rows) != 1 || tv.lastNextToken != "tok" {
		t.Fatalf("expected rows and next token applied, got rows=%v token=%q", tv.rows, tv.lastNextToken)
	}
}

func TestHandleFetchResultErrorPushesErrorView(t *testing.T) {
	m := newTestModel()
	tv := newTableView(testDescriptor(), nil)
	m.stack = []view{tv}

	m.handleFetchResult(fetchResultMsg{generation: 0, err: errBoom})

	if _, ok := m.top().(*errorView); !ok {
		t.Fatalf("expected an error view pushed on top, got %T", m.top())
	}
}

func TestHandleActionResultRefetchesOnSuccess(t *testing.T) {
	m := newTestModel()
	tv := newTableView(testDescriptor(), nil)
	m.stack = []view{tv}

	_, cmd := m.handleActionResult(actionResultMsg{generation: 0})
	if cmd == nil {
		t.Fatalf("expected a refetch command after a successful action")
	}
}

func TestHandleActionResultErrorPushesErrorView(t *testing.T) {
	m := newTestModel()
	tv := newTableView(testDescriptor(), nil)
	m.stack = []view{tv}

	m.handleActionResult(actionResultMsg{generation: 0, err: errBoom})

	if _, ok := m.top().(*errorView); !ok {
		t.Fatalf("expected an error view pushed on top, got %T", m.top())
	}
}

func TestOpenConfirmRejectsMismatchedDescriptor(t *testing.T) {
	m := newTestModel()
	desc := testDescriptor()
	desc.Key = "iam" // Ec2Start.DescriptorKey() is "ec2"
	tv := newTableView(desc, nil)
	tv.rows = []dispatch.Row{{Columns: []string{"r-1"}, Raw: map[string]any{"InstanceId": "i-1"}}}
	tv.applyFilter()
	m.stack = []view{tv}

	m.openConfirm(tv, actions.Ec2Start)

	if _, ok := m.top().(*confirmView); ok {
		t.Fatalf("expected no confirm view for a mismatched descriptor")
	}
}

func TestOpenConfirmPushesConfirmViewWithResolvedInstanceID(t *testing.T) {
	m := newTestModel()
	tv := newTableView(testDescriptor(), nil)
	tv.rows = []dispatch.Row{{Columns: []string{"i-0123"}, Raw: map[string]any{"InstanceId": "i-0123"}}}
	tv.applyFilter()
	m.stack = []view{tv}

	m.openConfirm(tv, actions.Ec2Stop)

	cv, ok := m.top().(*confirmView)
	if !ok {
		t.Fatalf("expected a confirm view pushed, got %T", m.top())
	}
	if cv.instanceID != "i-0123" {
		t.Fatalf("expected resolved instance id i-0123, got %q", cv.instanceID)
	}
}

func TestHandlePickerKeyEnterIgnoredWithNoCandidates(t *testing.T) {
	m := newTestModel()
	pv := m.top().(*pickerView)
	pv.candidates = nil
	pv.highlight = 0

	m.handlePickerKey(pv, tea.KeyMsg{Type: tea.KeyEnter})

	if _, ok := m.top().(*pickerView); !ok {
		t.Fatalf("expected the picker view to remain on top when there is nothing to select")
	}
}

func TestHandlePickerKeyDownClampsToLastCandidate(t *testing.T) {
	m := newTestModel()
	pv := m.top().(*pickerView)
	pv.candidates = []catalog.Match{{Descriptor: catalog.ResourceDescriptor{Key: "ec2"}}}
	pv.highlight = 0

	m.handlePickerKey(pv, tea.KeyMsg{Type: tea.KeyDown})

	if pv.highlight != 0 {
		t.Fatalf("expected highlight to clamp at the last candidate, got %d", pv.highlight)
	}
}

func TestHandleTableKeyFilteringEditsBuffer(t *testing.T) {
	m := newTestModel()
	tv := newTableView(testDescriptor(), nil)
	tv.rows = []dispatch.Row{
		{Columns: []string{"i-0001", "running"}},
		{Columns: []string{"i-0002", "stopped"}},
	}
	tv.applyFilter()
	tv.filtering = true
	m.stack = []view{tv}

	m.handleTableKey(tv, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("run")})

	if tv.filterBuf != "run" {
		t.Fatalf("expected filter buffer to accumulate typed runes, got %q", tv.filterBuf)
	}
	if len(tv.visibleRows()) != 1 {
		t.Fatalf("expected the filter to narrow to 1 row while typing")
	}
}

func TestHandleTableKeyEscCancelsFilter(t *testing.T) {
	m := newTestModel()
	tv := newTableView(testDescriptor(), nil)
	tv.filtering = true
	tv.filterBuf = "run"
	m.stack = []view{tv}

	m.handleTableKey(tv, tea.KeyMsg{Type: tea.KeyEsc})

	if tv.filtering {
		t.Fatalf("expected esc to leave filtering mode")
	}
	if tv.filterBuf != "" {
		t.Fatalf("expected esc to clear the filter buffer, got %q", tv.filterBuf)
	}
}

// errBoom is a stand-in error for tests that only care that an error was surfaced,
// not its exact text.
var errBoom = errTest("boom")

type errTest string

func (e errTest) Error() string { return string(e) }
