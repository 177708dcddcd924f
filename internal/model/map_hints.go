package model

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Per-field map overrides travel under x-mapadmin {map: {...}} or the
// flattened x-mapadmin-map key. Values land in field metadata with a "map."
// prefix so renderers and the config overlay can pick them up uniformly.
var mapHintKeys = map[string]struct{}{
	"height": {},
	"zoom":   {},
	"lat":    {},
	"lon":    {},
	"style":  {},
	"layers": {},
}

// AllowedMapHintKeys returns a sorted copy of the recognised map block keys.
func AllowedMapHintKeys() []string {
	keys := make([]string, 0, len(mapHintKeys))
	for key := range mapHintKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// IsAllowedMapHintKey reports whether the supplied key belongs to the
// per-field map block contract.
func IsAllowedMapHintKey(key string) bool {
	_, ok := mapHintKeys[key]
	return ok
}

func mapHintsFromExtensions(ext map[string]any) map[string]string {
	if len(ext) == 0 {
		return nil
	}

	block := extractMapBlock(ext)
	if len(block) == 0 {
		return nil
	}

	out := make(map[string]string)
	for key, value := range block {
		if _, ok := mapHintKeys[key]; !ok {
			continue
		}
		switch key {
		case "height", "zoom":
			if num, ok := toIntValue(value); ok && num > 0 {
				out["map."+key] = strconv.Itoa(num)
			}
		case "lat", "lon":
			if num, ok := toFloatValue(value); ok {
				out["map."+key] = strconv.FormatFloat(num, 'f', -1, 64)
			}
		case "style":
			if str := strings.TrimSpace(toString(value)); str != "" {
				out["map."+key] = str
			}
		case "layers":
			if joined := joinStringList(value); joined != "" {
				out["map."+key] = joined
			}
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func extractMapBlock(ext map[string]any) map[string]any {
	if len(ext) == 0 {
		return nil
	}
	if raw, ok := ext[extensionNamespace]; ok {
		if nested := toAnyMap(raw); len(nested) > 0 {
			if block := toAnyMap(nested["map"]); len(block) > 0 {
				return block
			}
		}
	}
	if raw, ok := ext[extensionNamespace+"-map"]; ok {
		if block := toAnyMap(raw); len(block) > 0 {
			return block
		}
	}
	return nil
}

func joinStringList(value any) string {
	switch list := value.(type) {
	case []string:
		return strings.Join(list, ",")
	case []any:
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if str := strings.TrimSpace(toString(item)); str != "" {
				parts = append(parts, str)
			}
		}
		return strings.Join(parts, ",")
	case string:
		return strings.TrimSpace(list)
	default:
		return ""
	}
}

func toIntValue(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	case float32:
		if float64(v) == math.Trunc(float64(v)) {
			return int(v), true
		}
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.Atoi(trimmed)
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func toFloatValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
