package mapcfg_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-mapadmin/pkg/mapcfg"
)

func loadRegistry(t *testing.T, files map[string]string) *mapcfg.Registry {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	registry, err := mapcfg.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return registry
}

func TestLoadFSParsesJSONAndYAML(t *testing.T) {
	registry := loadRegistry(t, map[string]string{
		"defaults.yml": "defaults:\n  layers:\n    - osm.mapnik\n  defaultZoom: 6\n",
		"districts.json": `{
			"resources": {
				"District": {
					"listFields": ["boundary"],
					"popup": {"labelPath": "name"}
				}
			}
		}`,
	})

	defaults := registry.Defaults()
	if len(defaults.Layers) != 1 || defaults.Layers[0] != "osm.mapnik" {
		t.Fatalf("defaults layers not parsed: %#v", defaults.Layers)
	}
	if defaults.DefaultZoom == nil || *defaults.DefaultZoom != 6 {
		t.Fatalf("defaults zoom not parsed: %#v", defaults.DefaultZoom)
	}

	config, ok := registry.Resource("district")
	if !ok {
		t.Fatal("resource lookup should be case-insensitive")
	}
	if len(config.ListFields) != 1 || config.ListFields[0] != "boundary" {
		t.Fatalf("list fields not parsed: %#v", config.ListFields)
	}
	if config.Popup.LabelPath != "name" {
		t.Fatalf("popup config not parsed: %#v", config.Popup)
	}
}

func TestLoadFSMergesDefaultsAcrossFiles(t *testing.T) {
	registry := loadRegistry(t, map[string]string{
		"a.yml": "defaults:\n  layers:\n    - osm.mapnik\n  defaultZoom: 4\n",
		"b.yml": "defaults:\n  defaultZoom: 10\n",
	})

	defaults := registry.Defaults()
	if defaults.DefaultZoom == nil || *defaults.DefaultZoom != 10 {
		t.Fatalf("later defaults should win: %#v", defaults.DefaultZoom)
	}
	if len(defaults.Layers) != 1 || defaults.Layers[0] != "osm.mapnik" {
		t.Fatalf("unrelated defaults should survive: %#v", defaults.Layers)
	}
}

func TestLoadFSRejectsDuplicateResources(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yml": &fstest.MapFile{Data: []byte("resources:\n  District:\n    listFields: [boundary]\n")},
		"b.yml": &fstest.MapFile{Data: []byte("resources:\n  district:\n    listFields: [boundary]\n")},
	}
	_, err := mapcfg.LoadFS(fsys)
	if err == nil || !strings.Contains(err.Error(), "duplicate resource") {
		t.Fatalf("expected a duplicate resource error, got %v", err)
	}
}

func TestLoadFSRejectsEmptyDocument(t *testing.T) {
	fsys := fstest.MapFS{
		"empty.yml": &fstest.MapFile{Data: []byte("   \n")},
	}
	if _, err := mapcfg.LoadFS(fsys); err == nil {
		t.Fatal("expected an error for an empty document")
	}
}

func TestLoadFSRejectsEmptyGroup(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.json": &fstest.MapFile{Data: []byte(`{"resources":{"District":{"groups":[[]]}}}`)},
	}
	if _, err := mapcfg.LoadFS(fsys); err == nil {
		t.Fatal("expected an error for an empty group")
	}
}

func TestLoadFSIgnoresOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"README.md": &fstest.MapFile{Data: []byte("# not a config document")},
	}
	registry, err := mapcfg.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if !registry.Empty() {
		t.Fatal("expected an empty registry")
	}
}

func TestLoadFSNilFilesystem(t *testing.T) {
	registry, err := mapcfg.LoadFS(nil)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if !registry.Empty() {
		t.Fatal("expected an empty registry")
	}
}

func TestEmbeddedDefaultsLoad(t *testing.T) {
	registry, err := mapcfg.LoadFS(mapcfg.EmbeddedFS())
	if err != nil {
		t.Fatalf("load embedded defaults: %v", err)
	}

	defaults := registry.Defaults()
	if len(defaults.Layers) == 0 || defaults.Layers[0] != "osm.mapnik" {
		t.Fatalf("embedded defaults should name a base layer: %#v", defaults.Layers)
	}
	if defaults.DefaultZoom == nil || *defaults.DefaultZoom != 4 {
		t.Fatalf("embedded defaults zoom: %#v", defaults.DefaultZoom)
	}
	if defaults.ZoomToDataExtent == nil || !*defaults.ZoomToDataExtent {
		t.Fatalf("embedded defaults should zoom to data extent: %#v", defaults.ZoomToDataExtent)
	}
}
