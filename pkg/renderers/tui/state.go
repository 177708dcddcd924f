package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// State tracks collected values and server-provided validation feedback,
// both keyed by dotted field paths ("office.address", "tags.0"). Numeric
// segments address slice elements.
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with prefilled values and submission errors. The
// prefill map is deep-copied so prompting never mutates caller data.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	values := make(map[string]any, len(prefill))
	for key, value := range prefill {
		values[key] = deepCopy(value)
	}
	return &State{values: values, errors: errs}
}

// Values returns the collected value map.
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the submission errors attached to a path.
func (s *State) ErrorsFor(path string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[path]
}

// GetValue resolves a dotted path into the value tree.
func (s *State) GetValue(path string) (any, bool) {
	if s == nil || path == "" {
		return nil, false
	}
	current := any(s.values)
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// SetValue writes a value at a dotted path, creating intermediate maps and
// extending slices as needed.
func (s *State) SetValue(path string, value any) error {
	if s == nil {
		return errors.New("tui: state is nil")
	}
	if path == "" {
		return errors.New("tui: empty value path")
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return setMapPath(s.values, strings.Split(path, "."), value)
}

func setMapPath(node map[string]any, segments []string, value any) error {
	key := segments[0]
	if len(segments) == 1 {
		node[key] = value
		return nil
	}

	rest := segments[1:]
	if idx, err := strconv.Atoi(rest[0]); err == nil {
		slice, _ := node[key].([]any)
		updated, err := setSlicePath(slice, idx, rest[1:], value)
		if err != nil {
			return err
		}
		node[key] = updated
		return nil
	}

	child, ok := node[key].(map[string]any)
	if !ok {
		child = make(map[string]any)
		node[key] = child
	}
	return setMapPath(child, rest, value)
}

func setSlicePath(slice []any, idx int, rest []string, value any) ([]any, error) {
	if idx < 0 {
		return nil, fmt.Errorf("tui: negative slice index %d", idx)
	}
	for len(slice) <= idx {
		slice = append(slice, nil)
	}
	if len(rest) == 0 {
		slice[idx] = value
		return slice, nil
	}

	if next, err := strconv.Atoi(rest[0]); err == nil {
		child, _ := slice[idx].([]any)
		updated, err := setSlicePath(child, next, rest[1:], value)
		if err != nil {
			return nil, err
		}
		slice[idx] = updated
		return slice, nil
	}

	child, ok := slice[idx].(map[string]any)
	if !ok {
		child = make(map[string]any)
		slice[idx] = child
	}
	return slice, setMapPath(child, rest, value)
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for key, item := range typed {
			clone[key] = deepCopy(item)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, item := range typed {
			clone[i] = deepCopy(item)
		}
		return clone
	default:
		return typed
	}
}
