package tui

import (
	"strings"
	"testing"

	"github.com/chukul/cloudtop/internal/dispatch"
)

func TestRenderDetailsJSONIsIndentedAndContainsFields(t *testing.T) {
	row := dispatch.Row{Raw: map[string]any{"InstanceId": "i-0123", "State": map[string]any{"Name": "running"}}}
	out := renderDetails(row, "json")
	if !strings.Contains(out, "\"InstanceId\": \"i-0123\"") {
		t.Fatalf("expected pretty-printed json, got:\n%s", out)
	}
	if !strings.Contains(out, "\"Name\": \"running\"") {
		t.Fatalf("expected nested field rendered, got:\n%s", out)
	}
}

func TestRenderDetailsYamlIndentsNestedMaps(t *testing.T) {
	row := dispatch.Row{Raw: map[string]any{"State": map[string]any{"Name": "running"}}}
	out := renderDetails(row, "yaml")
	if !strings.Contains(out, "State:") {
		t.Fatalf("expected top-level key rendered, got:\n%s", out)
	}
	if !strings.Contains(out, "  Name: running") {
		t.Fatalf("expected nested key indented one level, got:\n%s", out)
	}
}

func TestRenderYAMLishListsRenderAsDashItems(t *testing.T) {
	out := renderYAMLish([]any{"a", "b"}, 0)
	if !strings.Contains(out, "- a") || !strings.Contains(out, "- b") {
		t.Fatalf("expected dash-prefixed list items, got:\n%s", out)
	}
}
