package mapadminwiring

import (
	"testing"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-mapadmin/components/projections"
)

type decodedConfig struct {
	SRIDSelect struct {
		URL         string            `json:"url"`
		Method      string            `json:"method"`
		SearchParam string            `json:"searchParam"`
		LimitParam  string            `json:"limitParam"`
		Limit       int               `json:"limit"`
		ResultsPath string            `json:"resultsPath"`
		Mapping     map[string]string `json:"mapping"`
	} `json:"sridSelect"`
}

func TestProjectionsGeometryOverride_Defaults(t *testing.T) {
	ov := ProjectionsGeometryOverride("op", "location", "/admin")

	if ov.OperationID != "op" {
		t.Fatalf("unexpected operation id: %q", ov.OperationID)
	}
	if ov.FieldPath != "location" {
		t.Fatalf("unexpected field path: %q", ov.FieldPath)
	}

	var cfg decodedConfig
	if err := json.Unmarshal([]byte(ov.Config.Options), &cfg); err != nil {
		t.Fatalf("failed to decode option payload: %v", err)
	}
	if cfg.SRIDSelect.URL != "/admin/api/projections" {
		t.Fatalf("unexpected url: %q", cfg.SRIDSelect.URL)
	}
	if cfg.SRIDSelect.Method != "GET" {
		t.Fatalf("unexpected method: %q", cfg.SRIDSelect.Method)
	}
	if cfg.SRIDSelect.SearchParam != "q" {
		t.Fatalf("unexpected search param: %q", cfg.SRIDSelect.SearchParam)
	}
	if cfg.SRIDSelect.Limit != 50 {
		t.Fatalf("unexpected limit: %d", cfg.SRIDSelect.Limit)
	}
	if cfg.SRIDSelect.ResultsPath != "data" {
		t.Fatalf("unexpected results path: %q", cfg.SRIDSelect.ResultsPath)
	}
	if cfg.SRIDSelect.Mapping["value"] != "value" || cfg.SRIDSelect.Mapping["label"] != "label" {
		t.Fatalf("unexpected mapping: %#v", cfg.SRIDSelect.Mapping)
	}
}

func TestProjectionsGeometryOverride_CustomParams(t *testing.T) {
	ov := ProjectionsGeometryOverride(
		"op",
		"location",
		"/admin",
		projections.WithRoutePath("/api/srid"),
		projections.WithSearchParam("search"),
		projections.WithLimitParam("l"),
		projections.WithDefaultLimit(10),
	)

	var cfg decodedConfig
	if err := json.Unmarshal([]byte(ov.Config.Options), &cfg); err != nil {
		t.Fatalf("failed to decode option payload: %v", err)
	}
	if cfg.SRIDSelect.URL != "/admin/api/srid" {
		t.Fatalf("unexpected url: %q", cfg.SRIDSelect.URL)
	}
	if cfg.SRIDSelect.SearchParam != "search" {
		t.Fatalf("unexpected search param: %q", cfg.SRIDSelect.SearchParam)
	}
	if cfg.SRIDSelect.LimitParam != "l" {
		t.Fatalf("unexpected limit param: %q", cfg.SRIDSelect.LimitParam)
	}
	if cfg.SRIDSelect.Limit != 10 {
		t.Fatalf("unexpected limit: %d", cfg.SRIDSelect.Limit)
	}
}

func TestSRIDFromOptionValue(t *testing.T) {
	if got := SRIDFromOptionValue("4326"); got != 4326 {
		t.Fatalf("unexpected srid: %d", got)
	}
	for _, raw := range []string{"", "abc", "-5", "0"} {
		if got := SRIDFromOptionValue(raw); got != 0 {
			t.Fatalf("expected 0 for %q, got %d", raw, got)
		}
	}
}
