package model

import (
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

var (
	uiHintKeys = []string{
		"badge",
		"category",
		"class",
		"cssClass",
		"helpText",
		"hideLabel",
		"hint",
		"input",
		"inputType",
		"label",
		"mapHeight",
		"overlayStyle",
		"placeholder",
		"precision",
		"priority",
		"section",
		"submitLabel",
		"unit",
		"widget",
		"zoom",
	}

	uiHintKeySet = func(keys []string) map[string]struct{} {
		result := make(map[string]struct{}, len(keys))
		for _, key := range keys {
			result[key] = struct{}{}
		}
		return result
	}(uiHintKeys)
)

// AllowedUIHintKeys returns a sorted copy of the recognised UI extension keys.
func AllowedUIHintKeys() []string {
	keys := append([]string(nil), uiHintKeys...)
	sort.Strings(keys)
	return keys
}

// IsAllowedUIHintKey reports whether the supplied key participates in the
// curated UI hint contract.
func IsAllowedUIHintKey(key string) bool {
	_, ok := uiHintKeySet[key]
	return ok
}

// CanonicalizeExtensionValue mirrors the builder's rules for turning extension
// values into renderer-friendly strings. Returns false when the value cannot be
// represented deterministically.
func CanonicalizeExtensionValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case interface{ String() string }:
		s := v.String()
		if s == "" {
			return "", false
		}
		return s, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int8, int16, int32, int64:
		return canonicalizeJSON(v)
	case uint, uint8, uint16, uint32, uint64:
		return canonicalizeJSON(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 64), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case map[string]any:
		if len(v) == 0 {
			return "", false
		}
		return canonicalizeJSON(v)
	case map[string]string:
		if len(v) == 0 {
			return "", false
		}
		return canonicalizeJSON(v)
	case []any:
		if len(v) == 0 {
			return "", false
		}
		return canonicalizeJSON(v)
	case []string:
		if len(v) == 0 {
			return "", false
		}
		return canonicalizeJSON(v)
	default:
		return "", false
	}
}

func canonicalizeJSON(value any) (string, bool) {
	payload, err := json.Marshal(value)
	if err != nil || len(payload) == 0 {
		return "", false
	}
	return string(payload), true
}
