package forms

// BindInitial regroups per-field initial values for grouped widgets: for
// every synthetic field the keymap names, the source entries are removed
// from the map and collected into an ordered slice under the synthetic
// name. Sources without an initial value contribute a nil placeholder so
// positions stay aligned with the keymap order. The input map is not
// modified; a rewritten copy is returned.
func BindInitial(keymap Keymap, initial map[string]any) map[string]any {
	if len(initial) == 0 || len(keymap) == 0 {
		return cloneValues(initial)
	}

	bound := cloneValues(initial)
	for _, group := range keymap.Groups() {
		sources := keymap[group]
		values := make([]any, len(sources))
		for i, source := range sources {
			values[i] = bound[source]
			delete(bound, source)
		}
		bound[group] = values
	}
	return bound
}

func cloneValues(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	cloned := make(map[string]any, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
