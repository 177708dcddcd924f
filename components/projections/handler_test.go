package projections

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type handlerResponse struct {
	Data []Option `json:"data"`
}

func utmFixture() []System {
	return []System{
		{SRID: 4326, Name: "WGS 84", Unit: "degree"},
		{SRID: 32601, Name: "WGS 84 / UTM zone 1N", Unit: "metre"},
		{SRID: 32701, Name: "WGS 84 / UTM zone 1S", Unit: "metre"},
		{SRID: 27700, Name: "OSGB36 / British National Grid", Unit: "metre"},
	}
}

func TestNewHandler_EmptyQueryReturnsEmptyDataArray(t *testing.T) {
	h := NewHandler(
		WithSystems(utmFixture()),
		WithEmptySearchMode(EmptySearchNone),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/projections", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := strings.TrimSpace(res.Header.Get("Content-Type")); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}

	var payload handlerResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}

func TestNewHandler_SearchAndLimitClamped(t *testing.T) {
	h := NewHandler(
		WithSystems(utmFixture()),
		WithMaxLimit(2),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/projections?q=wgs&limit=10", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}

	var payload handlerResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Data) != 2 {
		t.Fatalf("expected 2 results, got %d: %#v", len(payload.Data), payload.Data)
	}
	if payload.Data[0].Value != "4326" || payload.Data[0].Label != "WGS 84 (EPSG:4326)" {
		t.Fatalf("unexpected first option: %#v", payload.Data[0])
	}
	if payload.Data[1].Value != "32601" {
		t.Fatalf("unexpected second option: %#v", payload.Data[1])
	}
}

func TestNewHandler_DefaultDirectoryServesCommonSystems(t *testing.T) {
	h := NewHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/projections?q=epsg:3857", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload handlerResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].Value != "3857" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestNewHandler_CustomQueryParams(t *testing.T) {
	h := NewHandler(
		WithSystems(utmFixture()),
		WithSearchParam("search"),
		WithLimitParam("l"),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/projections?search=osgb&l=5", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}

	var payload handlerResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].Value != "27700" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestNewHandler_GuardRejects(t *testing.T) {
	h := NewHandler(
		WithSystems(utmFixture()),
		WithGuard(func(r *http.Request) error {
			return StatusError{Code: http.StatusUnauthorized}
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/projections?q=wgs", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestNewHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(WithSystems(utmFixture()))

	req := httptest.NewRequest(http.MethodPost, "/api/projections?q=wgs", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestNewHandler_NegativeLimitReturnsEmptyDataArray(t *testing.T) {
	h := NewHandler(
		WithSystems(utmFixture()),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/projections?q=wgs&limit=-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload handlerResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}
