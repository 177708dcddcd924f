package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/model"
)

// ErrorMapping splits a server error payload into field-level messages keyed
// by the dotted paths used throughout the render pipeline, plus form-level
// messages that no field can claim.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// FormMessages extracts the messages filed under form-level keys ("",
// "__all__", "non_field_errors", ...) from an already-keyed error map.
// Renderers use it to separate banner errors from inline field errors.
func FormMessages(errors map[string][]string) []string {
	keys := make([]string, 0, len(errors))
	for key := range errors {
		if isFormLevelKey(strings.TrimSpace(key)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var out []string
	for _, key := range keys {
		out = append(out, errors[key]...)
	}
	return normalizeMessages(out)
}

// MapErrorPayload normalises server error payloads (JSON pointers, JSONPath,
// dotted paths) into field identifiers the resource actually declares. Keys
// that match no field become form-level errors so messages are not lost, and
// the conventional form-level keys ("__all__", "non_field_errors", ...) are
// routed there directly.
func MapErrorPayload(resource model.Resource, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		return mapping
	}

	known := make(map[string]struct{})
	collectFieldPaths(resource.Fields, "", known)

	for rawPath, messages := range payload {
		cleaned := normalizeMessages(messages)
		if len(cleaned) == 0 {
			continue
		}

		path, formLevel := resolveFieldPath(rawPath, known)
		if formLevel || path == "" {
			mapping.Form = append(mapping.Form, cleaned...)
			continue
		}
		mapping.Fields[path] = append(mapping.Fields[path], cleaned...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// resolveFieldPath maps a raw payload key onto the deepest declared field
// path it can. The second return is true when the key is form-level.
func resolveFieldPath(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	best := ""
	for _, variant := range segmentVariants(segments) {
		path := longestKnownPath(variant, known)
		if path == "" {
			continue
		}
		if strings.Count(path, ".") > strings.Count(best, ".") || best == "" {
			best = path
		}
	}

	if best != "" {
		return best, false
	}
	return "", true
}

// parsePathSegments tolerates JSON pointer ("/body/name"), JSONPath
// ("$.body.tags[0]"), and plain dotted keys, unescaping ~1/~0 per RFC 6901.
func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil
	}

	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	clean = strings.NewReplacer("[", ".", "]", "", "//", "/").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

// segmentVariants yields the candidate interpretations of a payload path:
// as-is, without request envelopes, and without array indices.
func segmentVariants(segments []string) [][]string {
	var variants [][]string
	seen := make(map[string]struct{}, 4)

	add := func(candidate []string) {
		if len(candidate) == 0 {
			return
		}
		key := strings.Join(candidate, ".")
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		variants = append(variants, append([]string(nil), candidate...))
	}

	add(segments)

	unwrapped := trimEnvelope(segments)
	add(unwrapped)
	add(dropIndexSegments(segments))
	add(dropIndexSegments(unwrapped))

	return variants
}

// trimEnvelope removes leading wrapper segments that transports commonly add
// around the submitted document.
func trimEnvelope(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func dropIndexSegments(segments []string) []string {
	if len(segments) == 0 {
		return segments
	}

	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func longestKnownPath(segments []string, known map[string]struct{}) string {
	if len(segments) == 0 || len(known) == 0 {
		return ""
	}

	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func collectFieldPaths(fields []model.Field, prefix string, dest map[string]struct{}) {
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		path := joinPath(prefix, name)
		dest[path] = struct{}{}

		if len(field.Nested) > 0 {
			collectFieldPaths(field.Nested, path, dest)
		}
		if field.Items != nil {
			collectItemPaths(field.Items, path, dest)
		}
	}
}

func collectItemPaths(item *model.Field, prefix string, dest map[string]struct{}) {
	if item == nil {
		return
	}
	if name := strings.TrimSpace(item.Name); name != "" {
		dest[joinPath(prefix, name)] = struct{}{}
	}
	if len(item.Nested) > 0 {
		collectFieldPaths(item.Nested, prefix, dest)
	}
	if item.Items != nil {
		collectItemPaths(item.Items, prefix, dest)
	}
}

func joinPath(parent, child string) string {
	parent = strings.TrimSpace(parent)
	child = strings.TrimSpace(child)
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

// isFormLevelKey matches the conventional names backends use for errors that
// do not belong to any one field.
func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
