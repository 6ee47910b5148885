// Package dispatch implements the dispatch engine, pagination, and projector: given
// a resolved ResourceDescriptor and parameters, it invokes the matching wire-level
// operation, extracts the response_path array, and projects each column's json_path
// against every item.
package dispatch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// stepKind distinguishes the three path-expression step kinds.
type stepKind int

const (
	stepField stepKind = iota
	stepIndex
	stepWildcard
)

type step struct {
	kind  stepKind
	name  string // stepField
	index int    // stepIndex
}

var segmentPattern = regexp.MustCompile(`^([A-Za-z0-9_]*)((?:\[(?:[0-9]+|\*)\])*)$`)
var bracketPattern = regexp.MustCompile(`\[([0-9]+|\*)\]`)

// parsePath tokenizes a path expression into steps: dot for descent, [N] for index,
// [*] reserved for response_path only, trailing ? for optional.
func parsePath(path string) (steps []step, optional bool, err error) {
	trimmed := path
	if strings.HasSuffix(trimmed, "?") {
		optional = true
		trimmed = strings.TrimSuffix(trimmed, "?")
	}

	if trimmed == "" {
		return nil, optional, fmt.Errorf("empty path expression")
	}

	for _, segment := range strings.Split(trimmed, ".") {
		m := segmentPattern.FindStringSubmatch(segment)
		if m == nil {
			return nil, optional, fmt.Errorf("invalid path segment %q in %q", segment, path)
		}
		name := m[1]
		brackets := m[2]

		if name != "" {
			steps = append(steps, step{kind: stepField, name: name})
		}

		for _, b := range bracketPattern.FindAllStringSubmatch(brackets, -1) {
			if b[1] == "*" {
				steps = append(steps, step{kind: stepWildcard})
			} else {
				idx, convErr := strconv.Atoi(b[1])
				if convErr != nil {
					return nil, optional, fmt.Errorf("invalid index in %q: %w", path, convErr)
				}
				steps = append(steps, step{kind: stepIndex, index: idx})
			}
		}
	}

	return steps, optional, nil
}

// hasWildcard reports whether any step is a wildcard, used to reject [*] in column
// json_path expressions ([*] is reserved for response_path only).
func hasWildcard(steps []step) bool {
	for _, s := range steps {
		if s.kind == stepWildcard {
			return true
		}
	}
	return false
}
