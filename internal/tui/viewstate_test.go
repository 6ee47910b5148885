package tui

import (
	"testing"

	"github.com/chukul/cloudtop/internal/catalog"
	"github.com/chukul/cloudtop/internal/dispatch"
)

func testDescriptor() catalog.ResourceDescriptor {
	return catalog.ResourceDescriptor{
		Key:         "ec2",
		DisplayName: "EC2 Instances",
		IDField:     "InstanceId",
		Columns: []catalog.ColumnSpec{
			{Header: "ID", JSONPath: "InstanceId", Width: 20},
			{Header: "State", JSONPath: "State.Name", Width: 10},
		},
	}
}

func TestNewTableViewStartsAtFirstPageWithNoRows(t *testing.T) {
	v := newTableView(testDescriptor(), nil)
	if v.cursor == nil || !v.cursor.AtFirstPage() {
		t.Fatalf("expected a fresh cursor at the first page")
	}
	if len(v.visibleRows()) != 0 {
		t.Fatalf("expected no rows before a fetch completes")
	}
}

func TestApplyFilterMatchesCaseInsensitiveSubstring(t *testing.T) {
	v := newTableView(testDescriptor(), nil)
	v.rows = []dispatch.Row{
		{Columns: []string{"i-0001", "running"}},
		{Columns: []string{"i-0002", "stopped"}},
		{Columns: []string{"i-0003", "RUNNING"}},
	}

	v.filterBuf = "run"
	v.applyFilter()

	visible := v.visibleRows()
	if len(visible) != 2 {
		t.Fatalf("expected 2 matching rows, got %d", len(visible))
	}
	if visible[0].Columns[0] != "i-0001" || visible[1].Columns[0] != "i-0003" {
		t.Fatalf("unexpected matches: %+v", visible)
	}
}

func TestApplyFilterEmptyBufShowsAllRows(t *testing.T) {
	v := newTableView(testDescriptor(), nil)
	v.rows = []dispatch.Row{
		{Columns: []string{"i-0001", "running"}},
		{Columns: []string{"i-0002", "stopped"}},
	}
	v.filterBuf = "stopped"
	v.applyFilter()
	if len(v.visibleRows()) != 1 {
		t.Fatalf("expected filter to narrow to 1 row")
	}

	v.filterBuf = ""
	v.applyFilter()
	if len(v.visibleRows()) != 2 {
		t.Fatalf("expected clearing the filter to restore all rows")
	}
}

func TestApplyFilterNoMatchesYieldsEmptyVisible(t *testing.T) {
	v := newTableView(testDescriptor(), nil)
	v.rows = []dispatch.Row{{Columns: []string{"i-0001", "running"}}}
	v.filterBuf = "zzz-no-match"
	v.applyFilter()
	if len(v.visibleRows()) != 0 {
		t.Fatalf("expected no matches, got %d", len(v.visibleRows()))
	}
}
