// Package tui implements the interactive terminal explorer: a picker to choose a
// resource type, a paginated/filterable table of its rows, a details pane for one
// row, and the confirm/help/error modals layered on top via a view stack.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/chukul/cloudtop/internal/actions"
	"github.com/chukul/cloudtop/internal/awscreds"
	"github.com/chukul/cloudtop/internal/awsregion"
	"github.com/chukul/cloudtop/internal/catalog"
	"github.com/chukul/cloudtop/internal/dispatch"
	"github.com/chukul/cloudtop/internal/sigv4"
)

// Model is the top-level bubbletea model. It owns a LIFO view stack; Update always
// dispatches keys to the top view, and View always renders that top view.
type Model struct {
	registry     *catalog.Registry
	engine       *dispatch.Engine
	executor     *actions.Executor
	credsService *awscreds.Service
	client       *sigv4.Client
	logger       zerolog.Logger

	profile  string
	region   string
	readonly bool

	stack      []view
	generation int

	width, height int
	spinner       spinner.Model
}

// New builds the root Model. The caller constructs the registry, engine, executor,
// credential service, and signing client, and hands them here fully wired.
func New(registry *catalog.Registry, engine *dispatch.Engine, executor *actions.Executor, credsService *awscreds.Service, client *sigv4.Client, logger zerolog.Logger, profile, region string, readonly bool) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := &Model{
		registry:     registry,
		engine:       engine,
		executor:     executor,
		credsService: credsService,
		client:       client,
		logger:       logger,
		profile:      profile,
		region:       region,
		readonly:     readonly,
		spinner:      s,
	}
	m.stack = []view{newPickerView(registry, "")}
	return m
}

func (m *Model) top() view {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m *Model) push(v view) {
	m.stack = append(m.stack, v)
}

// pop removes the top view, returning false if the stack was already down to the
// root (Esc on the root picker quits instead).
func (m *Model) pop() bool {
	if len(m.stack) <= 1 {
		return false
	}
	m.stack = m.stack[:len(m.stack)-1]
	return true
}

func newPickerView(registry *catalog.Registry, query string) *pickerView {
	ti := textinput.New()
	ti.Placeholder = "resource key or name"
	ti.Prompt = ": "
	ti.SetValue(query)
	ti.Focus()
	return &pickerView{input: ti, candidates: registry.Search(query)}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeTop()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchResultMsg:
		return m.handleFetchResult(msg)

	case actionResultMsg:
		return m.handleActionResult(msg)

	case credentialResolvedMsg:
		return m.handleCredentialResolved(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) resizeTop() {
	switch v := m.top().(type) {
	case *tableView:
		v.table.SetWidth(m.width)
		v.table.SetHeight(m.height - 4)
	case *detailsView:
		v.viewport.Width = m.width
		v.viewport.Height = m.height - 4
	}
}

func (m *Model) handleFetchResult(msg fetchResultMsg) (tea.Model, tea.Cmd) {
	if msg.generation != m.generation {
		return m, nil
	}
	tv, ok := m.top().(*tableView)
	if !ok {
		return m, nil
	}
	tv.loading = false
	if msg.err != nil {
		m.push(&errorView{message: msg.err.Error()})
		return m, nil
	}
	tv.rows = msg.page.Rows
	tv.lastNextToken = msg.page.NextToken
	tv.filtered = nil
	tv.applyFilter()
	m.resizeTop()
	return m, nil
}

func (m *Model) handleActionResult(msg actionResultMsg) (tea.Model, tea.Cmd) {
	if msg.generation != m.generation {
		return m, nil
	}
	if msg.err != nil {
		m.push(&errorView{message: msg.err.Error()})
		return m, nil
	}
	if tv, ok := m.top().(*tableView); ok {
		return m, m.fetchCmd(tv, tv.cursor.Current())
	}
	return m, nil
}

func (m *Model) handleCredentialResolved(msg credentialResolvedMsg) (tea.Model, tea.Cmd) {
	if msg.generation != m.generation {
		return m, nil
	}
	if msg.err != nil {
		m.push(&errorView{message: msg.err.Error()})
		return m, nil
	}
	if tv, ok := m.top().(*tableView); ok {
		tv.loading = true
		return m, m.fetchCmd(tv, tv.cursor.Current())
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch v := m.top().(type) {
	case *pickerView:
		return m.handlePickerKey(v, msg)
	case *tableView:
		return m.handleTableKey(v, msg)
	case *detailsView:
		return m.handleDetailsKey(v, msg)
	case *confirmView:
		return m.handleConfirmKey(v, msg)
	case *helpView:
		m.pop()
		return m, nil
	case *errorView:
		m.pop()
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePickerKey(v *pickerView, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if !m.pop() {
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyEnter:
		if v.highlight < 0 || v.highlight >= len(v.candidates) {
			return m, nil
		}
		desc := v.candidates[v.highlight].Descriptor
		tv := newTableView(desc, nil)
		tv.loading = true
		m.push(tv)
		m.resizeTop()
		return m, m.fetchCmd(tv, "")
	case tea.KeyUp:
		if v.highlight > 0 {
			v.highlight--
		}
		return m, nil
	case tea.KeyDown:
		if v.highlight < len(v.candidates)-1 {
			v.highlight++
		}
		return m, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	v.candidates = m.registry.Search(v.input.Value())
	if v.highlight >= len(v.candidates) {
		v.highlight = len(v.candidates) - 1
	}
	if v.highlight < 0 {
		v.highlight = 0
	}
	return m, cmd
}

func (m *Model) handleTableKey(v *tableView, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.filtering {
		switch msg.Type {
		case tea.KeyEsc:
			v.filtering = false
			v.filterBuf = ""
			v.applyFilter()
		case tea.KeyEnter:
			v.filtering = false
		case tea.KeyBackspace:
			if len(v.filterBuf) > 0 {
				v.filterBuf = v.filterBuf[:len(v.filterBuf)-1]
			}
			v.applyFilter()
		default:
			if msg.Type == tea.KeyRunes {
				v.filterBuf += string(msg.Runes)
				v.applyFilter()
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, defaultKeyMap.Quit):
		return m, tea.Quit
	case key.Matches(msg, defaultKeyMap.Back):
		m.pop()
		return m, nil
	case key.Matches(msg, defaultKeyMap.Picker):
		m.push(newPickerView(m.registry, ""))
		return m, nil
	case key.Matches(msg, defaultKeyMap.Help):
		m.push(&helpView{})
		return m, nil
	case key.Matches(msg, defaultKeyMap.Filter):
		v.filtering = true
		return m, nil
	case key.Matches(msg, defaultKeyMap.Refresh):
		v.loading = true
		return m, m.fetchCmd(v, v.cursor.Current())
	case key.Matches(msg, defaultKeyMap.NextPage):
		if v.lastNextToken == "" || v.loading {
			return m, nil
		}
		v.cursor.Push(v.lastNextToken)
		v.loading = true
		return m, m.fetchCmd(v, v.cursor.Current())
	case key.Matches(msg, defaultKeyMap.PrevPage):
		if v.cursor.AtFirstPage() || v.loading {
			return m, nil
		}
		v.cursor.Pop()
		v.loading = true
		return m, m.fetchCmd(v, v.cursor.Current())
	case key.Matches(msg, defaultKeyMap.Details):
		return m.openDetails(v)
	case key.Matches(msg, defaultKeyMap.Start):
		return m.openConfirm(v, actions.Ec2Start)
	case key.Matches(msg, defaultKeyMap.Stop):
		return m.openConfirm(v, actions.Ec2Stop)
	case key.Matches(msg, defaultKeyMap.Terminate):
		return m.openConfirm(v, actions.Ec2Terminate)
	}

	for digit, binding := range defaultKeyMap.RegionKeys {
		if key.Matches(msg, binding) {
			return m.switchRegion(v, digit)
		}
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return m, cmd
}

func (m *Model) openDetails(v *tableView) (tea.Model, tea.Cmd) {
	rows := v.visibleRows()
	idx := v.table.Cursor()
	if idx < 0 || idx >= len(rows) {
		return m, nil
	}
	vp := viewport.New(m.width, m.height-4)
	dv := &detailsView{row: rows[idx], encoding: "json", viewport: vp}
	dv.viewport.SetContent(renderDetails(dv.row, dv.encoding))
	m.push(dv)
	return m, nil
}

func (m *Model) openConfirm(v *tableView, action actions.Action) (tea.Model, tea.Cmd) {
	if v.descriptor.Key != action.DescriptorKey() {
		return m, nil
	}
	rows := v.visibleRows()
	idx := v.table.Cursor()
	if idx < 0 || idx >= len(rows) {
		return m, nil
	}
	instanceID, err := dispatch.ProjectColumn(v.descriptor.Key, catalog.ColumnSpec{JSONPath: v.descriptor.IDField}, rows[idx].Raw)
	if err != nil || instanceID == "" {
		m.push(&errorView{message: fmt.Sprintf("cannot resolve instance id: %v", err)})
		return m, nil
	}
	m.push(&confirmView{action: action, instanceID: instanceID})
	return m, nil
}

func (m *Model) switchRegion(v *tableView, digit int) (tea.Model, tea.Cmd) {
	region, ok := awsregion.ByDigit(byte('0' + digit))
	if !ok {
		return m, nil
	}
	m.region = region
	m.client.SetRegion(region)
	m.credsService.InvalidateCache()
	m.generation++
	gen := m.generation
	credsService := m.credsService
	profile := m.profile
	return m, func() tea.Msg {
		_, err := credsService.Resolve(context.Background(), profile)
		return credentialResolvedMsg{generation: gen, err: err}
	}
}

func (m *Model) handleDetailsKey(v *detailsView, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, defaultKeyMap.Back):
		m.pop()
		return m, nil
	case key.Matches(msg, defaultKeyMap.Quit):
		return m, tea.Quit
	case msg.String() == "y":
		if v.encoding == "json" {
			v.encoding = "yaml"
		} else {
			v.encoding = "json"
		}
		v.viewport.SetContent(renderDetails(v.row, v.encoding))
		return m, nil
	}
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKey(v *confirmView, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.pop()
		m.generation++
		gen := m.generation
		executor := m.executor
		action := v.action
		instanceID := v.instanceID
		return m, func() tea.Msg {
			err := executor.Execute(context.Background(), action, instanceID)
			return actionResultMsg{generation: gen, err: err}
		}
	case "n", "esc":
		m.pop()
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	var body string
	switch v := m.top().(type) {
	case *pickerView:
		body = m.renderPicker(v)
	case *tableView:
		body = m.renderTable(v)
	case *detailsView:
		body = m.renderDetails(v)
	case *confirmView:
		body = m.renderConfirm(v)
	case *helpView:
		body = m.renderHelp()
	case *errorView:
		body = m.renderError(v)
	}
	return body
}

func (m *Model) renderPicker(v *pickerView) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("cloudtop") + "\n\n")
	b.WriteString(v.input.View() + "\n\n")
	for i, c := range v.candidates {
		line := fmt.Sprintf("%-20s %s", c.Descriptor.Key, c.Descriptor.DisplayName)
		if i == v.highlight {
			line = confirmStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m *Model) renderTable(v *tableView) string {
	var b strings.Builder
	b.WriteString(pageHeader(m.profile, m.region, v.descriptor.Key, m.readonly) + "\n")
	if v.loading {
		b.WriteString(m.spinner.View() + " loading\n")
	} else if v.filtering {
		b.WriteString(filterPromptStyle.Render("/"+v.filterBuf) + "\n")
	} else {
		b.WriteString(statusStyle.Render(fmt.Sprintf("%d rows", len(v.visibleRows()))) + "\n")
	}
	b.WriteString(v.table.View())
	return b.String()
}

func (m *Model) renderDetails(v *detailsView) string {
	return headerStyle.Render("details ("+v.encoding+")") + "\n" + v.viewport.View()
}

func (m *Model) renderConfirm(v *confirmView) string {
	return confirmStyle.Render(v.action.ConfirmPrompt(v.instanceID)) + "\n\n[y] confirm   [n] cancel"
}

func (m *Model) renderHelp() string {
	rows := [][2]string{
		{":", "open resource picker"},
		{"enter / d", "show row details"},
		{"esc", "back"},
		{"[ / ]", "previous / next page"},
		{"/", "filter rows"},
		{"r", "refresh"},
		{"s / S / T", "start / stop / terminate instance"},
		{"0-5", "switch region"},
		{"q / ctrl+c", "quit"},
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("keys") + "\n\n")
	for _, r := range rows {
		b.WriteString(helpKeyStyle.Render(fmt.Sprintf("%-12s", r[0])) + helpDescStyle.Render(r[1]) + "\n")
	}
	return b.String()
}

func (m *Model) renderError(v *errorView) string {
	return errorBannerStyle.Render("error: "+v.message) + "\n\nesc to dismiss"
}
