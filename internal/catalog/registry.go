package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed data/*.json
var embeddedCatalog embed.FS

// catalogFile is the shape of each catalog JSON document on disk.
type catalogFile struct {
	Resources map[string]ResourceDescriptor `json:"resources"`
}

// Registry indexes ResourceDescriptors by key and exposes fuzzy search over key and
// display name.
type Registry struct {
	byKey    map[string]ResourceDescriptor
	ordered  []string // keys sorted lexicographically, for stable iteration
	services map[string]ServiceDefinition
}

// LoadRegistry ingests every embedded catalog document, validating each descriptor.
func LoadRegistry() (*Registry, error) {
	entries, err := embeddedCatalog.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("reading embedded catalog: %w", err)
	}

	r := &Registry{
		byKey:    map[string]ResourceDescriptor{},
		services: Services,
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := embeddedCatalog.ReadFile("data/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		var file catalogFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}

		for key, desc := range file.Resources {
			desc.Key = key
			if err := desc.Validate(r.services); err != nil {
				return nil, fmt.Errorf("%s: %w", entry.Name(), err)
			}
			if _, dup := r.byKey[key]; dup {
				return nil, fmt.Errorf("duplicate resource key %q", key)
			}
			r.byKey[key] = desc
			r.ordered = append(r.ordered, key)
		}
	}

	sort.Strings(r.ordered)
	return r, nil
}

// Lookup returns the descriptor for key, if present.
func (r *Registry) Lookup(key string) (ResourceDescriptor, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// ServiceFor resolves the ServiceDefinition backing a descriptor's service field.
// Validate already guaranteed the reference resolves at load time; a descriptor not
// sourced from this registry with an unknown service gets the zero ServiceDefinition.
func (r *Registry) ServiceFor(d ResourceDescriptor) ServiceDefinition {
	return r.services[d.Service]
}

// All returns every descriptor, ordered by key, for listing in the picker.
func (r *Registry) All() []ResourceDescriptor {
	out := make([]ResourceDescriptor, 0, len(r.ordered))
	for _, k := range r.ordered {
		out = append(out, r.byKey[k])
	}
	return out
}
