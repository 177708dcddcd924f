package changelist

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/paulmach/orb"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/mapcfg"
	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/store"
	"github.com/goliatone/go-mapadmin/pkg/store/memstore"
)

func landmarkResource() model.Resource {
	return model.Resource{
		Name:       "landmarks",
		Title:      "Landmarks",
		Endpoint:   "/landmarks",
		IDField:    "id",
		LabelField: "name",
		EditPath:   "/admin/landmarks/{id}",
		Fields: []model.Field{
			{Name: "name", Type: model.FieldTypeString, Label: "Name"},
			{Name: "kind", Type: model.FieldTypeString, Label: "Kind"},
			{Name: "location", Type: model.FieldTypeGeometry, Label: "Location", Metadata: map[string]string{
				model.MetadataGeometryKind: "point",
				model.MetadataGeometrySRID: "4326",
			}},
		},
	}
}

func seededLandmarks(t *testing.T, resource model.Resource) *memstore.Store {
	t.Helper()
	s := memstore.New(resource)
	s.Seed(
		store.Row{"id": "1", "name": "Obelisk", "kind": "monument",
			"location": geometry.NewValue(orb.Point{2.2945, 48.8584}, geometry.SRIDWGS84)},
		store.Row{"id": "2", "name": "Fountain", "kind": "monument",
			"location": geometry.NewValue(orb.Point{2.1204, 48.8049}, geometry.SRIDWGS84)},
		store.Row{"id": "3", "name": "Archive", "kind": "building"},
	)
	return s
}

func listHandler(t *testing.T, fns ...OptionFn) http.Handler {
	t.Helper()
	resource := landmarkResource()
	base := []OptionFn{
		WithResource(resource),
		WithStore(seededLandmarks(t, resource)),
	}
	return NewHandler(append(base, fns...)...)
}

func serveList(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestNewHandler_RendersRowsAndAggregatedMap(t *testing.T) {
	rec := serveList(t, listHandler(t), http.MethodGet, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`<a href="/admin/landmarks/1">Obelisk</a>`,
		`<a href="/admin/landmarks/3">Archive</a>`,
		">3 results<",
		"0 of 3 selected",
		"All 3 selected",
		`id="ma-landmarks-map"`,
		`data-mapadmin-widget="info"`,
		"GeometryCollection",
		"ol.js",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestNewHandler_MapOmittedWithoutGeometries(t *testing.T) {
	resource := landmarkResource()
	s := memstore.New(resource)
	s.Seed(store.Row{"id": "3", "name": "Archive", "kind": "building"})

	h := NewHandler(WithResource(resource), WithStore(s))
	rec := serveList(t, h, http.MethodGet, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "data-mapadmin-widget") {
		t.Fatalf("map should be absent when no row has a geometry:\n%s", body)
	}
	if strings.Contains(body, "ol.js") {
		t.Fatalf("map media should stay off a mapless page:\n%s", body)
	}
	if !strings.Contains(body, "Archive") {
		t.Fatalf("rows should still render:\n%s", body)
	}
}

func TestNewHandler_FiltersAndSearch(t *testing.T) {
	h := listHandler(t)

	rec := serveList(t, h, http.MethodGet, "/?kind=monument")
	if rec.Code != http.StatusOK {
		t.Fatalf("filter status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, ">2 results<") {
		t.Fatalf("expected two filtered rows:\n%s", body)
	}
	if strings.Contains(body, "Archive") {
		t.Fatalf("filtered-out row should not render:\n%s", body)
	}

	rec = serveList(t, h, http.MethodGet, "/?q=obelisk")
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}
	body = rec.Body.String()
	if !strings.Contains(body, ">1 result<") || !strings.Contains(body, "Obelisk") {
		t.Fatalf("search should keep the single match:\n%s", body)
	}
	if strings.Contains(body, "Fountain") {
		t.Fatalf("search should drop non-matches:\n%s", body)
	}
}

func TestNewHandler_RejectedLookupRedirectsWithErrorFlag(t *testing.T) {
	cases := []struct {
		name   string
		target string
	}{
		{"unknown field", "/?bogus=1"},
		{"unknown operator suffix", "/?name__regex=x"},
		{"page text", "/?p=abc"},
		{"page zero", "/?p=0"},
		{"per page text", "/?per_page=nope"},
		{"unknown order column", "/?o=-mystery"},
		{"page out of range", "/?p=99"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveList(t, listHandler(t), http.MethodGet, tc.target)
			if rec.Code != http.StatusFound {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
			}
			if got := rec.Header().Get("Location"); got != "/?e=1" {
				t.Fatalf("location = %q, want %q", got, "/?e=1")
			}
		})
	}
}

func TestNewHandler_ErrorFlagRendersInvalidSetupPage(t *testing.T) {
	rec := serveList(t, listHandler(t), http.MethodGet, "/?bogus=1&e=1")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(rec.Body.String(), "Database error") {
		t.Fatalf("expected the database-error page:\n%s", rec.Body.String())
	}
}

func TestNewHandler_ErrorFlagAloneStillLists(t *testing.T) {
	rec := serveList(t, listHandler(t), http.MethodGet, "/?e=1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Obelisk") {
		t.Fatalf("flag without a failing lookup should list normally:\n%s", rec.Body.String())
	}
}

func TestNewHandler_PaginationWindows(t *testing.T) {
	h := listHandler(t, WithPageSize(2))

	rec := serveList(t, h, http.MethodGet, "/")
	body := rec.Body.String()
	if !strings.Contains(body, "Obelisk") || !strings.Contains(body, "Fountain") {
		t.Fatalf("first page should hold the first two rows:\n%s", body)
	}
	if strings.Contains(body, "Archive") {
		t.Fatalf("third row belongs to page two:\n%s", body)
	}
	if !strings.Contains(body, "Page 1 of 2") || !strings.Contains(body, `href="/?p=2"`) {
		t.Fatalf("expected a link to page two:\n%s", body)
	}
	if !strings.Contains(body, "0 of 2 selected") || !strings.Contains(body, "All 3 selected") {
		t.Fatalf("selection notes should split page count from total:\n%s", body)
	}

	rec = serveList(t, h, http.MethodGet, "/?p=2")
	body = rec.Body.String()
	if !strings.Contains(body, "Archive") || strings.Contains(body, "Obelisk") {
		t.Fatalf("second page should hold the remaining row:\n%s", body)
	}
	if !strings.Contains(body, "Page 2 of 2") || !strings.Contains(body, `href="/?p=1"`) {
		t.Fatalf("expected a link back to page one:\n%s", body)
	}
}

func TestNewHandler_PerPageClampedToMax(t *testing.T) {
	h := listHandler(t, WithPageSize(1), WithMaxPageSize(2))

	rec := serveList(t, h, http.MethodGet, "/?per_page=50")
	body := rec.Body.String()
	if !strings.Contains(body, "Page 1 of 2") || !strings.Contains(body, "0 of 2 selected") {
		t.Fatalf("per_page should clamp to the maximum:\n%s", body)
	}
}

func TestNewHandler_OrderParamSortsRows(t *testing.T) {
	rec := serveList(t, listHandler(t), http.MethodGet, "/?o=-name")

	body := rec.Body.String()
	obelisk := strings.Index(body, "Obelisk")
	fountain := strings.Index(body, "Fountain")
	archive := strings.Index(body, "Archive")
	if obelisk < 0 || fountain < 0 || archive < 0 {
		t.Fatalf("all rows should render:\n%s", body)
	}
	if !(obelisk < fountain && fountain < archive) {
		t.Fatalf("rows should sort by name descending:\n%s", body)
	}
}

func TestNewHandler_ConfiguredColumnsRender(t *testing.T) {
	rec := serveList(t, listHandler(t, WithColumns([]string{"kind", "location"})), http.MethodGet, "/")

	body := rec.Body.String()
	for _, want := range []string{
		"<th>Kind</th>",
		"<th>Location</th>",
		"<td>monument</td>",
		"<td>point</td>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestNewHandler_PopupTextMetadataDrivesPopups(t *testing.T) {
	resource := landmarkResource()
	resource.Metadata = map[string]string{mapcfg.PopupTextMetadataKey: "Open on map"}

	h := NewHandler(WithResource(resource), WithStore(seededLandmarks(t, resource)))
	rec := serveList(t, h, http.MethodGet, "/")

	if !strings.Contains(rec.Body.String(), "Open on map") {
		t.Fatalf("configured popup text should reach the payload:\n%s", rec.Body.String())
	}
}

func TestNewHandler_ListOptionsMetadataReachesPayload(t *testing.T) {
	resource := landmarkResource()
	resource.Metadata = map[string]string{mapcfg.ListOptionsMetadataKey: `{"defaultZoom": 7}`}

	h := NewHandler(WithResource(resource), WithStore(seededLandmarks(t, resource)))
	rec := serveList(t, h, http.MethodGet, "/")

	if !strings.Contains(rec.Body.String(), "defaultZoom") {
		t.Fatalf("list options should ride the map payload:\n%s", rec.Body.String())
	}
}

func TestNewHandler_GeoJSONExport(t *testing.T) {
	rec := serveList(t, listHandler(t), http.MethodGet, "/?format=geojson")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/geo+json" {
		t.Fatalf("content type = %q", got)
	}

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			ID         any            `json:"id"`
			Geometry   map[string]any `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if doc.Type != "FeatureCollection" {
		t.Fatalf("type = %q", doc.Type)
	}
	if len(doc.Features) != 2 {
		t.Fatalf("rows without geometry should not export, got %d features", len(doc.Features))
	}

	first := doc.Features[0]
	if id, _ := first.ID.(string); id != "1" {
		t.Fatalf("feature id = %v", first.ID)
	}
	if first.Geometry["type"] != "GeometryCollection" {
		t.Fatalf("geometry type = %v", first.Geometry["type"])
	}
	if first.Properties["label"] != "Obelisk" || first.Properties["editUrl"] != "/admin/landmarks/1" {
		t.Fatalf("properties = %+v", first.Properties)
	}
}

func TestNewHandler_UnknownFormatRejected(t *testing.T) {
	rec := serveList(t, listHandler(t), http.MethodGet, "/?format=csv")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestNewHandler_GuardRejects(t *testing.T) {
	h := listHandler(t, WithGuard(func(r *http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))

	rec := serveList(t, h, http.MethodGet, "/")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestNewHandler_MethodNotAllowed(t *testing.T) {
	rec := serveList(t, listHandler(t), http.MethodPost, "/")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Fatalf("allow header = %q", allow)
	}
}

func TestNewHandler_HeadOmitsBody(t *testing.T) {
	rec := serveList(t, listHandler(t), http.MethodHead, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("HEAD should not write a body, got %d bytes", rec.Body.Len())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestNewHandler_MissingStoreFails(t *testing.T) {
	h := NewHandler(WithResource(landmarkResource()))

	rec := serveList(t, h, http.MethodGet, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
