package olmap

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/pkg/model"
)

// Layout metadata keys shared with the builder and the subset helpers.
const (
	layoutSectionsMetadataKey = "layout.sections"
	layoutFieldOrderPrefix    = "layout.fieldOrder."
	layoutSectionFieldKey     = "layout.section"
)

// sectionMeta mirrors the JSON section declarations stored on resource
// metadata.
type sectionMeta struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
	Fieldset    bool   `json:"fieldset,omitempty"`
}

type renderedField struct {
	Name string
	HTML string
}

type sectionGroup struct {
	ID          string
	Title       string
	Description string
	Fieldset    bool
	Fields      []renderedField
}

type layoutContext struct {
	Sections []sectionGroup
}

// buildLayoutContext renders every top-level field through the component
// pipeline and arranges the results into declared sections. Fields without a
// section assignment (or naming an undeclared section) collect into a trailing
// untitled section so nothing silently drops.
func buildLayoutContext(resource model.Resource, renderer *componentRenderer) (layoutContext, error) {
	declared, err := parseSectionMeta(resource.Metadata)
	if err != nil {
		return layoutContext{}, err
	}

	assignments := make(map[string][]renderedField)
	var unassigned []renderedField

	declaredIDs := make(map[string]struct{}, len(declared))
	for _, meta := range declared {
		declaredIDs[meta.ID] = struct{}{}
	}

	for _, field := range resource.Fields {
		markup, err := renderer.render(field, field.Name)
		if err != nil {
			return layoutContext{}, err
		}
		if markup == "" {
			continue
		}

		rendered := renderedField{Name: field.Name, HTML: markup}
		sectionID := strings.TrimSpace(stringFromMap(field.Metadata, layoutSectionFieldKey))
		if sectionID == "" {
			sectionID = strings.TrimSpace(stringFromMap(field.Metadata, "section"))
		}
		if sectionID == "" {
			unassigned = append(unassigned, rendered)
			continue
		}
		if _, ok := declaredIDs[sectionID]; !ok {
			unassigned = append(unassigned, rendered)
			continue
		}
		assignments[sectionID] = append(assignments[sectionID], rendered)
	}

	sort.SliceStable(declared, func(i, j int) bool {
		return declared[i].Order < declared[j].Order
	})

	var layout layoutContext
	for _, meta := range declared {
		fields := assignments[meta.ID]
		if len(fields) == 0 {
			continue
		}
		layout.Sections = append(layout.Sections, sectionGroup{
			ID:          meta.ID,
			Title:       meta.Title,
			Description: meta.Description,
			Fieldset:    meta.Fieldset,
			Fields:      orderSectionFields(fields, fieldOrderFor(resource.Metadata, meta.ID)),
		})
	}

	if len(unassigned) > 0 {
		layout.Sections = append(layout.Sections, sectionGroup{Fields: unassigned})
	}
	return layout, nil
}

func parseSectionMeta(metadata map[string]string) ([]sectionMeta, error) {
	raw := strings.TrimSpace(stringFromMap(metadata, layoutSectionsMetadataKey))
	if raw == "" {
		return nil, nil
	}
	var sections []sectionMeta
	if err := json.Unmarshal([]byte(raw), &sections); err != nil {
		return nil, fmt.Errorf("parse %s metadata: %w", layoutSectionsMetadataKey, err)
	}
	out := sections[:0]
	for _, section := range sections {
		section.ID = strings.TrimSpace(section.ID)
		if section.ID == "" {
			continue
		}
		out = append(out, section)
	}
	return out, nil
}

func fieldOrderFor(metadata map[string]string, sectionID string) []string {
	raw := strings.TrimSpace(stringFromMap(metadata, layoutFieldOrderPrefix+sectionID))
	if raw == "" {
		return nil
	}
	var order []string
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil
	}
	return order
}

// orderSectionFields applies an explicit field order, appending fields the
// order omits in their declaration position.
func orderSectionFields(fields []renderedField, order []string) []renderedField {
	if len(order) == 0 || len(fields) < 2 {
		return fields
	}

	index := make(map[string]int, len(order))
	for position, name := range order {
		if _, seen := index[name]; !seen {
			index[name] = position
		}
	}

	ordered := make([]renderedField, 0, len(fields))
	var rest []renderedField
	for _, field := range fields {
		if _, ok := index[field.Name]; ok {
			ordered = append(ordered, field)
		} else {
			rest = append(rest, field)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return index[ordered[i].Name] < index[ordered[j].Name]
	})
	return append(ordered, rest...)
}
