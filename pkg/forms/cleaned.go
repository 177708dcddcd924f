package forms

// ExtractCleaned undoes BindInitial on submitted data: slices stored under
// synthetic field names are split back into their source entries following
// the keymap order, and the synthetic keys are dropped. A slice shorter
// than its source list yields nil entries for the unmatched tail. The input
// map is not modified; a rewritten copy is returned.
func ExtractCleaned(keymap Keymap, cleaned map[string]any) map[string]any {
	if len(cleaned) == 0 || len(keymap) == 0 {
		return cloneValues(cleaned)
	}

	extracted := cloneValues(cleaned)
	for _, group := range keymap.Groups() {
		raw, ok := extracted[group]
		if !ok {
			continue
		}
		delete(extracted, group)

		values := toValueSlice(raw)
		for i, source := range keymap[group] {
			if i < len(values) {
				extracted[source] = values[i]
			} else {
				extracted[source] = nil
			}
		}
	}
	return extracted
}

func toValueSlice(raw any) []any {
	switch values := raw.(type) {
	case []any:
		return values
	case nil:
		return nil
	default:
		return []any{values}
	}
}
