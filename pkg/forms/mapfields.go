package forms

import (
	"strings"

	"github.com/goliatone/go-mapadmin/pkg/model"
)

// ApplyMapFields collapses geometry fields sharing a Metadata["group"] into
// one synthetic field per group and returns the rewritten field list with
// the Keymap describing the collapse. The synthetic field sits where the
// group's first member sat, is named by joining the member names with "_",
// and carries a collection kind so widgets render every member geometry on
// the same map. Groups with a single member and non-geometry fields pass
// through untouched.
func ApplyMapFields(fields []model.Field) ([]model.Field, Keymap, error) {
	groups := make(map[string][]model.Field)
	order := make(map[string]int)

	for idx, field := range fields {
		if !field.IsGeometry() {
			continue
		}
		group := field.Group()
		if _, seen := order[group]; !seen {
			order[group] = idx
		}
		groups[group] = append(groups[group], field)
	}

	keymap := make(Keymap)
	synthetic := make(map[string]model.Field)
	collapse := make(map[string]string)

	for group, members := range groups {
		if len(members) < 2 {
			continue
		}
		names := make([]string, 0, len(members))
		for _, member := range members {
			names = append(names, member.Name)
		}
		merged := mergeGroupField(group, members)
		keymap[merged.Name] = names
		synthetic[merged.Name] = merged
		for _, name := range names {
			collapse[name] = merged.Name
		}
	}

	if len(keymap) == 0 {
		return fields, keymap, nil
	}
	if err := keymap.Validate(); err != nil {
		return nil, nil, err
	}

	placed := make(map[string]bool)
	rewritten := make([]model.Field, 0, len(fields))
	for _, field := range fields {
		merged, ok := collapse[field.Name]
		if !ok {
			rewritten = append(rewritten, field)
			continue
		}
		if placed[merged] {
			continue
		}
		placed[merged] = true
		rewritten = append(rewritten, synthetic[merged])
	}

	return rewritten, keymap, nil
}

// mergeGroupField builds the synthetic field for a group. Member metadata is
// not merged wholesale; only the shared group name, the collection kind, and
// the ordered member list survive, plus the first member's SRID as the map's
// working system. The member list lets widgets emit one control per source so
// submissions line up with the keymap.
func mergeGroupField(group string, members []model.Field) model.Field {
	names := make([]string, 0, len(members))
	labels := make([]string, 0, len(members))
	required := false
	for _, member := range members {
		names = append(names, member.Name)
		if member.Label != "" {
			labels = append(labels, member.Label)
		}
		if member.Required {
			required = true
		}
	}

	merged := model.Field{
		Name:     strings.Join(names, "_"),
		Type:     model.FieldTypeGeometry,
		Required: required,
		Label:    strings.Join(labels, " / "),
		Metadata: map[string]string{
			model.MetadataGroup:        group,
			model.MetadataGeometryKind: "collection",
			model.MetadataGroupSources: strings.Join(names, ","),
		},
	}
	if srid := members[0].Metadata[model.MetadataGeometrySRID]; srid != "" {
		merged.Metadata[model.MetadataGeometrySRID] = srid
	}
	if widget := members[0].UIHints["widget"]; widget != "" {
		merged.UIHints = map[string]string{"widget": widget}
	}
	return merged
}
