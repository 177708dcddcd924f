package olmap

import (
	"io/fs"
	"strings"
	"testing"
)

func TestAssetsFSIncludesWidgetRuntime(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), MapScriptName)
	if err != nil {
		t.Fatalf("expected widget runtime to be readable: %v", err)
	}
	script := string(data)
	if !strings.Contains(script, "data-mapadmin-widget") {
		t.Fatalf("expected runtime to bind widget containers")
	}
	if !strings.Contains(script, "data-mapadmin-target") {
		t.Fatalf("expected runtime to sync the geometry textarea")
	}
}

func TestAssetsFSIncludesStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), StylesheetName)
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), ".mapadmin-map") {
		t.Fatalf("expected map container styles")
	}
}

func TestDefaultStylesheetLoads(t *testing.T) {
	if defaultStylesheet() == "" {
		t.Fatalf("embedded stylesheet should not be empty")
	}
}

func TestTemplatesFSIncludesFormTemplate(t *testing.T) {
	if _, err := fs.ReadFile(TemplatesFS(), "templates/form.tmpl"); err != nil {
		t.Fatalf("expected form template to be embedded: %v", err)
	}
	if _, err := fs.ReadFile(TemplatesFS(), "templates/components/input.tmpl"); err != nil {
		t.Fatalf("expected component partials to be embedded: %v", err)
	}
}
