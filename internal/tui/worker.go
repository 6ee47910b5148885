package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chukul/cloudtop/internal/dispatch"
)

// fetchCmd dispatches an engine.Fetch call on a goroutine bubbletea manages, tagging
// the result with the generation active when the call was issued so a stale result
// arriving after the user has moved to a different view is dropped.
func (m *Model) fetchCmd(tv *tableView, pageToken string) tea.Cmd {
	gen := m.generation
	engine := m.engine
	descKey := tv.descriptor.Key
	params := tv.params
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		page, err := engine.Fetch(ctx, descKey, params, pageToken)
		if err != nil {
			logger.Debug().Err(err).Str("descriptor", descKey).Msg("fetch failed")
		}
		return fetchResultMsg{generation: gen, page: page, err: err}
	}
}

// renderDetails renders one row's raw response item as pretty JSON or an
// indentation-only YAML-like rendering; neither is meant to round-trip, only to show
// the full object a table row was projected from.
func renderDetails(row dispatch.Row, encoding string) string {
	if encoding == "yaml" {
		return renderYAMLish(row.Raw, 0)
	}
	b, err := json.MarshalIndent(row.Raw, "", "  ")
	if err != nil {
		return fmt.Sprintf("error rendering details: %v", err)
	}
	return string(b)
}

func renderYAMLish(v any, depth int) string {
	indent := strings.Repeat("  ", depth)
	switch t := v.(type) {
	case map[string]any:
		var b strings.Builder
		for k, val := range t {
			switch val.(type) {
			case map[string]any, []any:
				b.WriteString(fmt.Sprintf("%s%s:\n%s", indent, k, renderYAMLish(val, depth+1)))
			default:
				b.WriteString(fmt.Sprintf("%s%s: %v\n", indent, k, val))
			}
		}
		return b.String()
	case []any:
		var b strings.Builder
		for _, elem := range t {
			b.WriteString(fmt.Sprintf("%s- %s\n", indent, strings.TrimSpace(renderYAMLish(elem, depth+1))))
		}
		return b.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
