package forms

import (
	"fmt"
	"sort"
)

// Keymap records which original fields feed each synthetic grouped field.
// Keys are synthetic field names, values are the original field names in the
// order their values travel through the widget.
type Keymap map[string][]string

// Groups returns the synthetic field names in sorted order so callers can
// iterate deterministically.
func (k Keymap) Groups() []string {
	if len(k) == 0 {
		return nil
	}
	groups := make([]string, 0, len(k))
	for group := range k {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

// Sources returns the original field names behind a synthetic field.
func (k Keymap) Sources(group string) []string {
	sources := k[group]
	if len(sources) == 0 {
		return nil
	}
	return append([]string(nil), sources...)
}

// SourceGroup reports which synthetic field a source belongs to.
func (k Keymap) SourceGroup(source string) (string, bool) {
	for _, group := range k.Groups() {
		for _, candidate := range k[group] {
			if candidate == source {
				return group, true
			}
		}
	}
	return "", false
}

// Validate rejects keymaps with empty groups or a source claimed by more
// than one group, both of which would make the bind/extract round trip
// ambiguous.
func (k Keymap) Validate() error {
	claimed := make(map[string]string)
	for _, group := range k.Groups() {
		sources := k[group]
		if len(sources) == 0 {
			return fmt.Errorf("forms: group %q has no source fields", group)
		}
		for _, source := range sources {
			if owner, ok := claimed[source]; ok {
				return fmt.Errorf("forms: field %q claimed by groups %q and %q", source, owner, group)
			}
			claimed[source] = group
		}
	}
	return nil
}

// Clone returns a deep copy of the keymap.
func (k Keymap) Clone() Keymap {
	if k == nil {
		return nil
	}
	cloned := make(Keymap, len(k))
	for group, sources := range k {
		cloned[group] = append([]string(nil), sources...)
	}
	return cloned
}
