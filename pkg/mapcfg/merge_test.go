package mapcfg_test

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-mapadmin/pkg/mapcfg"
)

func TestMergeOptionsReplacesScalarsAndArrays(t *testing.T) {
	base := []byte(`{"layers":["osm.mapnik"],"defaultZoom":4}`)
	overlay := []byte(`{"layers":["google.hybrid"],"defaultLat":44}`)

	merged, err := mapcfg.MergeOptions(base, overlay)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	doc := string(merged)
	if got := gjson.Get(doc, "layers.#").Int(); got != 1 {
		t.Fatalf("arrays should replace wholesale, got %d layers", got)
	}
	if got := gjson.Get(doc, "layers.0").String(); got != "google.hybrid" {
		t.Fatalf("unexpected layer %q", got)
	}
	if got := gjson.Get(doc, "defaultZoom").Int(); got != 4 {
		t.Fatalf("untouched base key changed: %d", got)
	}
	if got := gjson.Get(doc, "defaultLat").Int(); got != 44 {
		t.Fatalf("overlay key missing: %d", got)
	}
}

func TestMergeOptionsMergesNestedObjects(t *testing.T) {
	base := []byte(`{"overlayStyle":{"fillColor":"#ffff00","strokeWidth":5}}`)
	overlay := []byte(`{"overlayStyle":{"fillColor":"#00ff00"}}`)

	merged, err := mapcfg.MergeOptions(base, overlay)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	doc := string(merged)
	if got := gjson.Get(doc, "overlayStyle.fillColor").String(); got != "#00ff00" {
		t.Fatalf("overlay value not applied: %q", got)
	}
	if got := gjson.Get(doc, "overlayStyle.strokeWidth").Int(); got != 5 {
		t.Fatalf("partial object override dropped a base entry: %d", got)
	}
}

func TestMergeOptionsEmptyInputs(t *testing.T) {
	merged, err := mapcfg.MergeOptions(nil, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if string(merged) != "{}" {
		t.Fatalf("expected empty object, got %s", merged)
	}

	base := []byte(`{"defaultZoom":4}`)
	merged, err = mapcfg.MergeOptions(base, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := gjson.GetBytes(merged, "defaultZoom").Int(); got != 4 {
		t.Fatalf("base lost without overlay: %s", merged)
	}
}

func TestMergeOptionsRejectsMalformedJSON(t *testing.T) {
	if _, err := mapcfg.MergeOptions([]byte("{"), []byte("{}")); err == nil {
		t.Fatal("expected an error for a malformed base")
	}
	if _, err := mapcfg.MergeOptions([]byte("{}"), []byte("{")); err == nil {
		t.Fatal("expected an error for a malformed overlay")
	}
}

func TestOptionsJSONRoundTrip(t *testing.T) {
	zoom := 12
	options := mapcfg.MapOptions{
		Layers:      []string{"osm.mapnik"},
		DefaultZoom: &zoom,
	}

	encoded, err := mapcfg.OptionsJSON(options)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := mapcfg.UnmarshalOptions(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.DefaultZoom == nil || *decoded.DefaultZoom != 12 {
		t.Fatalf("zoom did not round-trip: %#v", decoded.DefaultZoom)
	}
	if len(decoded.Layers) != 1 || decoded.Layers[0] != "osm.mapnik" {
		t.Fatalf("layers did not round-trip: %#v", decoded.Layers)
	}

	empty, err := mapcfg.OptionsJSON(mapcfg.MapOptions{})
	if err != nil {
		t.Fatalf("encode empty: %v", err)
	}
	if string(empty) != "{}" {
		t.Fatalf("zero options should encode as an empty object, got %s", empty)
	}
}
