package mapcfg

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MergeOptions overlays one JSON option document onto another: keys the
// overlay sets replace the base, and object values merge recursively so a
// partial style override keeps the base's remaining entries. Empty inputs are
// treated as empty objects.
func MergeOptions(base, overlay []byte) ([]byte, error) {
	merged := bytes.TrimSpace(base)
	if len(merged) == 0 {
		merged = []byte("{}")
	}
	if !gjson.ValidBytes(merged) {
		return nil, errors.New("mapcfg: base options are not valid JSON")
	}

	trimmed := bytes.TrimSpace(overlay)
	if len(trimmed) == 0 {
		return merged, nil
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, errors.New("mapcfg: overlay options are not valid JSON")
	}

	var err error
	gjson.ParseBytes(trimmed).ForEach(func(key, value gjson.Result) bool {
		merged, err = mergeValue(merged, escapePathKey(key.String()), value)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func mergeValue(doc []byte, path string, value gjson.Result) ([]byte, error) {
	if value.IsObject() && gjson.GetBytes(doc, path).IsObject() {
		var err error
		value.ForEach(func(key, nested gjson.Result) bool {
			doc, err = mergeValue(doc, path+"."+escapePathKey(key.String()), nested)
			return err == nil
		})
		return doc, err
	}
	patched, err := sjson.SetRawBytes(doc, path, []byte(value.Raw))
	if err != nil {
		return nil, fmt.Errorf("mapcfg: merge option %q: %w", path, err)
	}
	return patched, nil
}

// OptionsJSON encodes options as a JSON object, "{}" for the zero value.
func OptionsJSON(options MapOptions) ([]byte, error) {
	encoded, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("mapcfg: encode options: %w", err)
	}
	return encoded, nil
}

// UnmarshalOptions decodes a JSON option object back into MapOptions,
// ignoring keys the structure does not model.
func UnmarshalOptions(data []byte) (MapOptions, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return MapOptions{}, nil
	}
	var options MapOptions
	if err := json.Unmarshal(data, &options); err != nil {
		return MapOptions{}, fmt.Errorf("mapcfg: decode options: %w", err)
	}
	return options, nil
}

var pathKeyEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)

func escapePathKey(key string) string {
	return pathKeyEscaper.Replace(key)
}
