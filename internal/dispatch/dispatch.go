package dispatch

import (
	"context"
	"fmt"

	"github.com/chukul/cloudtop/internal/catalog"
)

// Row is one projected table row: Columns holds the rendered cell strings in
// descriptor column order, Raw holds the untouched response item so details/YAML
// rendering can show the full object.
type Row struct {
	Columns []string
	Raw     any
}

// Page is the result of one Fetch call: the rows for this page plus the token (if
// any) needed to fetch the next page.
type Page struct {
	Rows      []Row
	NextToken string
}

// Engine ties the resource registry to a signed HTTP client, turning a descriptor
// and a page token into projected rows.
type Engine struct {
	registry *catalog.Registry
	client   wireClient
}

// NewEngine builds a dispatch engine over a loaded registry and a signing client.
func NewEngine(registry *catalog.Registry, client wireClient) *Engine {
	return &Engine{registry: registry, client: client}
}

// Fetch resolves the descriptor's service, invokes the matching handler, extracts
// the response_path array, and projects every column for every item. params carries
// filter values and, for child resources, the parent scoping value (e.g. "cluster"
// for ecs-services) keyed by the field name the handler expects.
func (e *Engine) Fetch(ctx context.Context, descriptorKey string, params map[string]string, pageToken string) (Page, error) {
	desc, ok := e.registry.Lookup(descriptorKey)
	if !ok {
		return Page{}, fmt.Errorf("unknown resource descriptor %q", descriptorKey)
	}

	svc := e.registry.ServiceFor(desc)

	handler, err := lookupHandler(desc.Service, desc.SDKMethod)
	if err != nil {
		return Page{}, err
	}

	isGlobal := desc.EffectiveIsGlobal(svc)
	doc, err := handler.Invoke(ctx, e.client, svc, isGlobal, params, pageToken)
	if err != nil {
		return Page{}, err
	}

	items, err := ResolveArray(desc.Key, desc.ResponsePath, doc)
	if err != nil {
		return Page{}, err
	}

	rows := make([]Row, 0, len(items))
	for _, item := range items {
		cols := make([]string, len(desc.Columns))
		for i, col := range desc.Columns {
			cell, err := ProjectColumn(desc.Key, col, item)
			if err != nil {
				return Page{}, err
			}
			cols[i] = cell
		}
		rows = append(rows, Row{Columns: cols, Raw: item})
	}

	nextToken, err := extractNextToken(doc, handler.NextTokenField)
	if err != nil {
		return Page{}, err
	}

	return Page{Rows: rows, NextToken: nextToken}, nil
}

// extractNextToken reads the pagination token out of a response document using the
// same dotted-path grammar as response_path, since each AWS operation names its
// next-token field differently (NextToken, Marker, NextMarker, nextToken...).
func extractNextToken(doc any, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	steps, _, err := parsePath(path)
	if err != nil {
		return "", fmt.Errorf("invalid next-token path %q: %w", path, err)
	}
	val, found, err := walkScalar(steps, doc)
	if err != nil || !found {
		return "", nil
	}
	s, ok := val.(string)
	if !ok {
		return "", nil
	}
	return s, nil
}
