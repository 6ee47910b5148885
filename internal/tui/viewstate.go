package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/chukul/cloudtop/internal/actions"
	"github.com/chukul/cloudtop/internal/catalog"
	"github.com/chukul/cloudtop/internal/dispatch"
)

// view is the tagged-variant ViewState: Table, Details, Picker, Help, Confirm, and
// Error each implement it. The view stack in Model is a LIFO of these, with the
// renderer always drawing the top element.
type view interface {
	isView()
}

// tableView shows one resource descriptor's rows, with inline filtering and
// pagination. filterBuf holds the in-progress "/" edit buffer; filtered holds the
// indices into rows currently matching it.
type tableView struct {
	descriptor    catalog.ResourceDescriptor
	params        map[string]string
	rows          []dispatch.Row
	filtered      []int
	filterBuf     string
	filtering     bool
	cursor        *dispatch.Cursor
	lastNextToken string
	loading       bool
	table         table.Model
}

func (*tableView) isView() {}

func newTableView(desc catalog.ResourceDescriptor, params map[string]string) *tableView {
	cols := make([]table.Column, len(desc.Columns))
	for i, c := range desc.Columns {
		w := c.Width
		if w <= 0 {
			w = 20
		}
		cols[i] = table.Column{Title: c.Header, Width: w}
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true))
	return &tableView{
		descriptor: desc,
		params:     params,
		cursor:     dispatch.NewCursor(desc.Key, ""),
		table:      t,
	}
}

// applyFilter recomputes the filtered row-index list from filterBuf, a
// case-insensitive substring match against every rendered cell.
func (v *tableView) applyFilter() {
	if v.filterBuf == "" {
		v.filtered = nil
		v.refreshTableRows()
		return
	}
	needle := strings.ToLower(v.filterBuf)
	v.filtered = v.filtered[:0]
	for i, row := range v.rows {
		for _, cell := range row.Columns {
			if strings.Contains(strings.ToLower(cell), needle) {
				v.filtered = append(v.filtered, i)
				break
			}
		}
	}
	v.refreshTableRows()
}

// visibleRows returns the rows currently shown, honoring an active filter.
func (v *tableView) visibleRows() []dispatch.Row {
	if v.filterBuf == "" {
		return v.rows
	}
	out := make([]dispatch.Row, 0, len(v.filtered))
	for _, i := range v.filtered {
		out = append(out, v.rows[i])
	}
	return out
}

func (v *tableView) refreshTableRows() {
	visible := v.visibleRows()
	rows := make([]table.Row, len(visible))
	for i, r := range visible {
		rows[i] = table.Row(r.Columns)
	}
	v.table.SetRows(rows)
}

// detailsView shows one row's raw JSON, optionally re-rendered as YAML-ish indented
// text. encoding is "json" or "yaml".
type detailsView struct {
	row      dispatch.Row
	encoding string
	viewport viewport.Model
}

func (*detailsView) isView() {}

// pickerView is the ':' resource-switch fuzzy finder.
type pickerView struct {
	input      textinput.Model
	candidates []catalog.Match
	highlight  int
}

func (*pickerView) isView() {}

// helpView has no state; it is a static key-binding reference.
type helpView struct{}

func (*helpView) isView() {}

// confirmView holds the pending action until the user accepts or cancels.
type confirmView struct {
	action     actions.Action
	instanceID string
}

func (*confirmView) isView() {}

// errorView surfaces a fatal-to-the-current-operation message; Esc clears it,
// returning to whatever was beneath it on the stack.
type errorView struct {
	message string
}

func (*errorView) isView() {}
