package dispatch

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/chukul/cloudtop/internal/catalog"
	"github.com/chukul/cloudtop/internal/errs"
)

// ResolveArray resolves descriptor.response_path against doc: a missing path yields
// an empty array (not an error); a path that resolves to a non-array yields a
// ShapeError.
func ResolveArray(descriptorKey, path string, doc any) ([]any, error) {
	steps, _, err := parsePath(path)
	if err != nil {
		return nil, &errs.ShapeError{DescriptorKey: descriptorKey, Path: path, Reason: err.Error()}
	}

	items, err := walkCollecting(steps, doc)
	if err != nil {
		return nil, &errs.ShapeError{DescriptorKey: descriptorKey, Path: path, Reason: err.Error()}
	}
	if items == nil {
		return []any{}, nil
	}
	return items, nil
}

// walkCollecting descends through steps, flattening every wildcard fan-out into one
// slice of leaf values. A nil intermediate result (field absent) collapses to "no
// items" rather than an error; a present-but-wrong-typed intermediate is an error.
func walkCollecting(steps []step, doc any) ([]any, error) {
	if len(steps) == 0 {
		if doc == nil {
			return nil, nil
		}
		return []any{doc}, nil
	}

	s := steps[0]
	rest := steps[1:]

	switch s.kind {
	case stepField:
		obj, ok := doc.(map[string]any)
		if !ok {
			if doc == nil {
				return nil, nil
			}
			return nil, fmt.Errorf("expected object to descend into field %q, got %T", s.name, doc)
		}
		val, present := obj[s.name]
		if !present {
			return nil, nil
		}
		return walkCollecting(rest, val)

	case stepIndex:
		arr, ok := doc.([]any)
		if !ok {
			if doc == nil {
				return nil, nil
			}
			return nil, fmt.Errorf("expected array to index [%d], got %T", s.index, doc)
		}
		if s.index < 0 || s.index >= len(arr) {
			return nil, nil
		}
		return walkCollecting(rest, arr[s.index])

	case stepWildcard:
		arr, ok := doc.([]any)
		if !ok {
			if doc == nil {
				return nil, nil
			}
			return nil, fmt.Errorf("expected array for [*], got %T", doc)
		}
		var out []any
		for _, elem := range arr {
			sub, err := walkCollecting(rest, elem)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	}

	return nil, fmt.Errorf("unreachable step kind")
}

// ProjectColumn evaluates one column's json_path against a single response item.
// Strings render verbatim, numbers as decimal, booleans as true/false,
// objects/arrays as compact JSON, and a missing optional (?) path as an empty string.
func ProjectColumn(descriptorKey string, col catalog.ColumnSpec, item any) (string, error) {
	steps, optional, err := parsePath(col.JSONPath)
	if err != nil {
		return "", &errs.ShapeError{DescriptorKey: descriptorKey, Path: col.JSONPath, Reason: err.Error()}
	}
	if hasWildcard(steps) {
		return "", &errs.ShapeError{DescriptorKey: descriptorKey, Path: col.JSONPath, Reason: "[*] is not valid in a column json_path"}
	}

	val, found, err := walkScalar(steps, item)
	if err != nil {
		return "", &errs.ShapeError{DescriptorKey: descriptorKey, Path: col.JSONPath, Reason: err.Error()}
	}
	if !found {
		if optional {
			return "", nil
		}
		return "", &errs.ShapeError{DescriptorKey: descriptorKey, Path: col.JSONPath, Reason: "path did not resolve"}
	}

	return stringify(val), nil
}

func walkScalar(steps []step, doc any) (val any, found bool, err error) {
	cur := doc
	for _, s := range steps {
		switch s.kind {
		case stepField:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false, fmt.Errorf("expected object to descend into field %q, got %T", s.name, cur)
			}
			v, present := obj[s.name]
			if !present {
				return nil, false, nil
			}
			cur = v
		case stepIndex:
			arr, ok := cur.([]any)
			if !ok {
				return nil, false, fmt.Errorf("expected array to index [%d], got %T", s.index, cur)
			}
			if s.index < 0 || s.index >= len(arr) {
				return nil, false, nil
			}
			cur = arr[s.index]
		case stepWildcard:
			return nil, false, fmt.Errorf("[*] not valid in scalar path")
		}
	}
	return cur, true, nil
}

// stringify renders a JSON value as its table-cell string.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
