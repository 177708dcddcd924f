package changelist

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/goliatone/go-mapadmin/pkg/geometry"
	"github.com/goliatone/go-mapadmin/pkg/mapcfg"
	"github.com/goliatone/go-mapadmin/pkg/model"
	"github.com/goliatone/go-mapadmin/pkg/store"
)

func aggregateOptions(fns ...OptionFn) Options {
	base := []OptionFn{WithResource(landmarkResource())}
	return NewOptions(append(base, fns...)...)
}

func TestAggregateRows_SkipsRowsWithoutGeometry(t *testing.T) {
	entries := aggregateRows(aggregateOptions(), []store.Row{
		{"id": "1", "location": geometry.NewValue(orb.Point{1, 2}, geometry.SRIDWGS84)},
		{"id": "2"},
		{"id": "3", "location": nil},
	})

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Row["id"] != "1" {
		t.Fatalf("wrong row aggregated: %+v", entries[0].Row)
	}
	collection, ok := entries[0].Value.Geom.(orb.Collection)
	if !ok || len(collection) != 1 {
		t.Fatalf("row geometries should wrap in a collection, got %T", entries[0].Value.Geom)
	}
	if entries[0].Value.SRID != geometry.SRIDWGS84 {
		t.Fatalf("srid = %d", entries[0].Value.SRID)
	}
}

func TestAggregateRows_ReprojectsIntoDisplaySRID(t *testing.T) {
	opts := aggregateOptions(WithDisplaySRID(geometry.SRIDWebMercator))
	entries := aggregateRows(opts, []store.Row{
		{"id": "1", "location": geometry.NewValue(orb.Point{0, 0}, geometry.SRIDWGS84)},
	})

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Value.SRID != geometry.SRIDWebMercator {
		t.Fatalf("srid = %d, want %d", entries[0].Value.SRID, geometry.SRIDWebMercator)
	}
	point := entries[0].Value.Geom.(orb.Collection)[0].(orb.Point)
	if point[0] != 0 || point[1] != 0 {
		t.Fatalf("origin should project onto the mercator origin, got %+v", point)
	}
}

func TestAggregateRows_CombinesMultipleFields(t *testing.T) {
	resource := landmarkResource()
	resource.Fields = append(resource.Fields, model.Field{
		Name: "grounds",
		Type: model.FieldTypeGeometry,
		Metadata: map[string]string{
			model.MetadataGeometryKind: "polygon",
			model.MetadataGeometrySRID: "4326",
		},
	})

	entries := aggregateRows(NewOptions(WithResource(resource)), []store.Row{{
		"id":       "1",
		"location": geometry.NewValue(orb.Point{1, 2}, geometry.SRIDWGS84),
		"grounds": geometry.NewValue(orb.Polygon{
			{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
		}, geometry.SRIDWGS84),
	}})

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	collection := entries[0].Value.Geom.(orb.Collection)
	if len(collection) != 2 {
		t.Fatalf("both fields should land in one collection, got %d members", len(collection))
	}
}

func TestAggregateRows_ParsesSerialisedGeometry(t *testing.T) {
	entries := aggregateRows(aggregateOptions(), []store.Row{
		{"id": "1", "location": "POINT(1 2)"},
		{"id": "2", "location": `{"type":"Point","coordinates":[3,4]}`},
		{"id": "3", "location": []byte("SRID=4326;POINT(5 6)")},
	})

	if len(entries) != 3 {
		t.Fatalf("serialised payloads should parse, got %d entries", len(entries))
	}
}

func TestAggregateRows_SkipsUnusableValues(t *testing.T) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	entries := aggregateRows(aggregateOptions(WithLogger(quiet)), []store.Row{
		{"id": "1", "location": "not a geometry"},
		{"id": "2", "location": 42},
	})

	if len(entries) != 0 {
		t.Fatalf("unusable values should be skipped, got %d entries", len(entries))
	}
}

func TestAggregateRows_AccessorHookDerivesValues(t *testing.T) {
	opts := aggregateOptions(
		WithMapFields([]string{"position"}),
		WithGeometryAccessor(func(row store.Row, field model.Field) (geometry.Value, error) {
			if field.Name != "position" {
				return geometry.Value{}, nil
			}
			lon := row["lon"].(float64)
			lat := row["lat"].(float64)
			return geometry.NewValue(orb.Point{lon, lat}, geometry.SRIDWGS84), nil
		}),
	)

	entries := aggregateRows(opts, []store.Row{{"id": "1", "lon": 2.35, "lat": 48.85}})
	if len(entries) != 1 {
		t.Fatalf("derived geometry should aggregate, got %d entries", len(entries))
	}
}

func TestMapFields_MetadataFallback(t *testing.T) {
	resource := landmarkResource()
	resource.Metadata = map[string]string{mapcfg.ListFieldsMetadataKey: `["location"]`}

	fields := mapFields(NewOptions(WithResource(resource)))
	if len(fields) != 1 || fields[0].Name != "location" {
		t.Fatalf("metadata should drive map fields, got %+v", fields)
	}
	if fields[0].Metadata[model.MetadataGeometryKind] != "point" {
		t.Fatalf("declared names should resolve to the resource field, got %+v", fields[0])
	}
}

func TestMapFields_DefaultsToGeometryFields(t *testing.T) {
	fields := mapFields(aggregateOptions())
	if len(fields) != 1 || fields[0].Name != "location" {
		t.Fatalf("default map fields = %+v", fields)
	}
}

func TestMapFields_UndeclaredNamesBecomeSynthetic(t *testing.T) {
	fields := mapFields(aggregateOptions(WithMapFields([]string{"position"})))
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %+v", fields)
	}
	if fields[0].Name != "position" || fields[0].Type != model.FieldTypeGeometry {
		t.Fatalf("undeclared names should become geometry descriptors, got %+v", fields[0])
	}
}

func TestBuildInfoMap_PopupsLinkRows(t *testing.T) {
	opts := aggregateOptions()
	entries := aggregateRows(opts, []store.Row{
		{"id": "1", "name": "Obelisk", "location": geometry.NewValue(orb.Point{1, 2}, geometry.SRIDWGS84)},
	})

	infoMap := buildInfoMap(opts, entries)
	if infoMap.Len() != 1 {
		t.Fatalf("expected 1 map entry, got %d", infoMap.Len())
	}
	popup := infoMap.Entries()[0].PopupHTML
	if !strings.Contains(popup, `href="/admin/landmarks/1"`) {
		t.Fatalf("popup should link the edit page, got %q", popup)
	}
	if !strings.Contains(popup, "Obelisk") {
		t.Fatalf("popup should carry the row label, got %q", popup)
	}
}

func TestBuildInfoMap_OptionsFromMetadata(t *testing.T) {
	resource := landmarkResource()
	resource.Metadata = map[string]string{mapcfg.ListOptionsMetadataKey: `{"defaultZoom": 7}`}

	infoMap := buildInfoMap(NewOptions(WithResource(resource)), nil)
	if infoMap.Options["defaultZoom"] == nil {
		t.Fatalf("list options metadata should reach the map, got %+v", infoMap.Options)
	}
}

func TestBuildInfoMap_ExplicitOptionsWin(t *testing.T) {
	resource := landmarkResource()
	resource.Metadata = map[string]string{mapcfg.ListOptionsMetadataKey: `{"defaultZoom": 7}`}

	infoMap := buildInfoMap(NewOptions(
		WithResource(resource),
		WithMapOptions(map[string]any{"defaultZoom": 12}),
	), nil)
	if infoMap.Options["defaultZoom"] != 12 {
		t.Fatalf("explicit options should win over metadata, got %+v", infoMap.Options)
	}
}
