package geojson

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// SetProperty patches one property on the feature at index directly in an
// encoded document, avoiding a decode/re-encode round trip. The key is an
// sjson path segment, so dots descend into nested objects.
func SetProperty(doc []byte, index int, key string, value any) ([]byte, error) {
	out, err := sjson.SetBytes(doc, featurePropertyPath(index, key), value)
	if err != nil {
		return nil, fmt.Errorf("geojson: set property %q on feature %d: %w", key, index, err)
	}
	return out, nil
}

// Property reads one property from the feature at index in an encoded
// document.
func Property(doc []byte, index int, key string) gjson.Result {
	return gjson.GetBytes(doc, featurePropertyPath(index, key))
}

// FeatureCount reports the number of features in an encoded document without
// decoding it.
func FeatureCount(doc []byte) int {
	return int(gjson.GetBytes(doc, "features.#").Int())
}

func featurePropertyPath(index int, key string) string {
	return fmt.Sprintf("features.%d.properties.%s", index, key)
}
