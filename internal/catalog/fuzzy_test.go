package catalog

import "testing"

// TestSearchPrefersPrefixMatch asserts favoring of prefix matches.
func TestSearchPrefersPrefixMatch(t *testing.T) {
	r, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	matches := r.Search("ec2")
	if len(matches) == 0 {
		t.Fatal("expected at least one match for 'ec2'")
	}
	if matches[0].Descriptor.Key != "ec2" {
		t.Fatalf("expected exact prefix match 'ec2' to rank first, got %q", matches[0].Descriptor.Key)
	}
}

// TestSearchEmptyQueryReturnsAllStable asserts an empty query lists every descriptor
// in a stable order.
func TestSearchEmptyQueryReturnsAllStable(t *testing.T) {
	r, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	matches := r.Search("")
	if len(matches) != len(r.All()) {
		t.Fatalf("expected %d matches for empty query, got %d", len(r.All()), len(matches))
	}
}
