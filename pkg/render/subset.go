package render

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/pkg/model"
)

const (
	layoutSectionsKey      = "layout.sections"
	layoutFieldOrderPrefix = "layout.fieldOrder."
	layoutSectionFieldKey  = "layout.section"
)

// FieldSubset selects the top-level fields a renderer should keep. A field
// survives when it matches any populated selector, so combining selectors
// widens the subset. The zero value keeps everything.
type FieldSubset struct {
	// Groups keeps fields whose group (Metadata/UIHints "group" or
	// "admin.group") matches, case-insensitively.
	Groups []string
	// Tags keeps fields carrying any of the given tags ("tags"/"admin.tags",
	// JSON arrays or comma lists).
	Tags []string
	// Sections keeps fields assigned to the given layout sections.
	Sections []string
	// Geometry keeps geometry fields. The list map view renders with
	// {Geometry: true} so only the mappable columns survive.
	Geometry bool
}

// ApplySubset removes top-level fields that match none of the subset
// selectors and prunes section metadata so renderers do not draw empty
// sections afterwards. A nil resource or empty subset is a no-op.
func ApplySubset(resource *model.Resource, subset FieldSubset) {
	if resource == nil {
		return
	}

	matcher := newSubsetMatcher(subset)
	if matcher.empty() {
		return
	}

	filtered := make([]model.Field, 0, len(resource.Fields))
	for _, field := range resource.Fields {
		if matcher.matches(field) {
			filtered = append(filtered, field)
		}
	}
	resource.Fields = filtered
	if len(resource.Fields) == 0 {
		resource.Fields = nil
	}

	pruneSectionMetadata(resource, resource.Fields)
}

type subsetMatcher struct {
	groups   map[string]struct{}
	tags     map[string]struct{}
	sections map[string]struct{}
	geometry bool
}

func newSubsetMatcher(subset FieldSubset) subsetMatcher {
	return subsetMatcher{
		groups:   normalizeTokens(subset.Groups),
		tags:     normalizeTokens(subset.Tags),
		sections: normalizeTokens(subset.Sections),
		geometry: subset.Geometry,
	}
}

func (m subsetMatcher) empty() bool {
	return len(m.groups) == 0 && len(m.tags) == 0 && len(m.sections) == 0 && !m.geometry
}

func (m subsetMatcher) matches(field model.Field) bool {
	if m.geometry && field.IsGeometry() {
		return true
	}

	if len(m.groups) > 0 {
		if group := normalizeToken(fieldGroup(field)); group != "" {
			if _, ok := m.groups[group]; ok {
				return true
			}
		}
	}

	if len(m.tags) > 0 {
		for _, tag := range fieldTags(field) {
			if _, ok := m.tags[tag]; ok {
				return true
			}
		}
	}

	if len(m.sections) > 0 {
		if section := normalizeToken(fieldSection(field)); section != "" {
			if _, ok := m.sections[section]; ok {
				return true
			}
		}
	}

	return false
}

func fieldGroup(field model.Field) string {
	for _, source := range []map[string]string{field.Metadata, field.UIHints} {
		if candidate := strings.TrimSpace(source["group"]); candidate != "" {
			return candidate
		}
		if candidate := strings.TrimSpace(source["admin.group"]); candidate != "" {
			return candidate
		}
	}
	return ""
}

func fieldTags(field model.Field) []string {
	var tags []string
	for _, source := range []map[string]string{field.Metadata, field.UIHints} {
		tags = append(tags, parseTokenList(source["tags"])...)
		tags = append(tags, parseTokenList(source["admin.tags"])...)
	}
	return dedupeTokens(tags)
}

func fieldSection(field model.Field) string {
	for _, source := range []map[string]string{field.Metadata, field.UIHints} {
		if candidate := strings.TrimSpace(source[layoutSectionFieldKey]); candidate != "" {
			return candidate
		}
		if candidate := strings.TrimSpace(source["section"]); candidate != "" {
			return candidate
		}
	}
	return ""
}

func normalizeTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		if token := normalizeToken(value); token != "" {
			result[token] = struct{}{}
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func dedupeTokens(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// parseTokenList accepts a JSON string array or a comma-separated list and
// returns lower-cased, deduplicated tokens.
func parseTokenList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var parsed []any
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			tokens := make([]string, 0, len(parsed))
			for _, entry := range parsed {
				if token := normalizeToken(anyToString(entry)); token != "" {
					tokens = append(tokens, token)
				}
			}
			return dedupeTokens(tokens)
		}
	}

	tokens := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		if token := normalizeToken(part); token != "" {
			tokens = append(tokens, token)
		}
	}
	return dedupeTokens(tokens)
}

func anyToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// pruneSectionMetadata drops layout.sections entries and per-section field
// orders for sections that no surviving field references.
func pruneSectionMetadata(resource *model.Resource, fields []model.Field) {
	if len(resource.Metadata) == 0 {
		return
	}

	used := collectUsedSections(fields)
	if len(used) == 0 {
		delete(resource.Metadata, layoutSectionsKey)
		pruneFieldOrders(resource.Metadata, nil)
		dropEmptyMetadata(resource)
		return
	}

	raw := strings.TrimSpace(resource.Metadata[layoutSectionsKey])
	if raw == "" {
		pruneFieldOrders(resource.Metadata, used)
		dropEmptyMetadata(resource)
		return
	}

	var sections []sectionMetadata
	if err := json.Unmarshal([]byte(raw), &sections); err != nil || len(sections) == 0 {
		delete(resource.Metadata, layoutSectionsKey)
		pruneFieldOrders(resource.Metadata, used)
		dropEmptyMetadata(resource)
		return
	}

	filtered := make([]sectionMetadata, 0, len(sections))
	for _, section := range sections {
		if _, ok := used[normalizeToken(section.ID)]; ok {
			filtered = append(filtered, section)
		}
	}

	if len(filtered) == 0 {
		delete(resource.Metadata, layoutSectionsKey)
	} else if payload, err := json.Marshal(filtered); err == nil {
		resource.Metadata[layoutSectionsKey] = string(payload)
	}

	pruneFieldOrders(resource.Metadata, used)
	dropEmptyMetadata(resource)
}

func dropEmptyMetadata(resource *model.Resource) {
	if len(resource.Metadata) == 0 {
		resource.Metadata = nil
	}
}

func collectUsedSections(fields []model.Field) map[string]struct{} {
	if len(fields) == 0 {
		return nil
	}
	used := make(map[string]struct{})
	for _, field := range fields {
		if section := normalizeToken(fieldSection(field)); section != "" {
			used[section] = struct{}{}
		}
	}
	if len(used) == 0 {
		return nil
	}
	return used
}

func pruneFieldOrders(metadata map[string]string, allowed map[string]struct{}) {
	for key := range metadata {
		if !strings.HasPrefix(key, layoutFieldOrderPrefix) {
			continue
		}
		section := normalizeToken(strings.TrimPrefix(key, layoutFieldOrderPrefix))
		if len(allowed) == 0 {
			delete(metadata, key)
			continue
		}
		if _, ok := allowed[section]; !ok {
			delete(metadata, key)
		}
	}
}

type sectionMetadata struct {
	ID             string            `json:"id"`
	Title          string            `json:"title,omitempty"`
	TitleKey       string            `json:"titleKey,omitempty"`
	Description    string            `json:"description,omitempty"`
	DescriptionKey string            `json:"descriptionKey,omitempty"`
	Order          int               `json:"order"`
	Fieldset       bool              `json:"fieldset,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	UIHints        map[string]string `json:"uiHints,omitempty"`
}
