package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

// Semi-major axis of the WGS84 spheroid; the web-mercator x coordinate of
// 180°E is pi times this value.
const semiMajorAxis = 6378137.0

func TestForSRIDBuiltins(t *testing.T) {
	for _, srid := range []int{SRIDWGS84, SRIDWebMercator} {
		p, err := ForSRID(srid)
		if err != nil {
			t.Fatalf("ForSRID(%d): %v", srid, err)
		}
		if p.EPSG() != srid {
			t.Fatalf("ForSRID(%d) returned projection for %d", srid, p.EPSG())
		}
	}
}

func TestForSRIDUnknown(t *testing.T) {
	if _, err := ForSRID(27700); err == nil {
		t.Fatal("expected unregistered SRID to fail")
	}
}

func TestTransformToWebMercator(t *testing.T) {
	value := Value{Geom: orb.Point{180, 0}, SRID: SRIDWGS84}

	got, err := Transform(value, SRIDWebMercator)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	point, ok := got.Geom.(orb.Point)
	if !ok {
		t.Fatalf("expected point, got %T", got.Geom)
	}
	wantX := math.Pi * semiMajorAxis
	if math.Abs(point[0]-wantX) > 1 {
		t.Fatalf("x at 180E: want %.0f, got %.0f", wantX, point[0])
	}
	if math.Abs(point[1]) > 1e-6 {
		t.Fatalf("y at equator: want 0, got %v", point[1])
	}
	if got.SRID != SRIDWebMercator {
		t.Fatalf("SRID: want %d, got %d", SRIDWebMercator, got.SRID)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	value := Value{Geom: orb.Point{-71.0589, 42.3601}, SRID: SRIDWGS84}

	mercator, err := Transform(value, SRIDWebMercator)
	if err != nil {
		t.Fatalf("to mercator: %v", err)
	}
	back, err := Transform(mercator, SRIDWGS84)
	if err != nil {
		t.Fatalf("back to lon/lat: %v", err)
	}

	point := back.Geom.(orb.Point)
	if math.Abs(point[0]+71.0589) > 1e-6 || math.Abs(point[1]-42.3601) > 1e-6 {
		t.Fatalf("round trip drifted: %v", point)
	}
}

func TestTransformSameSRIDCopies(t *testing.T) {
	value := Value{Geom: orb.LineString{{0, 0}, {1, 1}}, SRID: SRIDWGS84}

	got, err := Transform(value, SRIDWGS84)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	line := got.Geom.(orb.LineString)
	line[0][0] = 42
	if value.Geom.(orb.LineString)[0][0] == 42 {
		t.Fatal("same-SRID transform returned aliased geometry")
	}
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	value := Value{Geom: orb.Point{10, 20}, SRID: SRIDWGS84}

	if _, err := Transform(value, SRIDWebMercator); err != nil {
		t.Fatalf("transform: %v", err)
	}

	point := value.Geom.(orb.Point)
	if point[0] != 10 || point[1] != 20 {
		t.Fatalf("input mutated: %v", point)
	}
}

func TestTransformMissingSRID(t *testing.T) {
	if _, err := Transform(Value{Geom: orb.Point{1, 2}}, SRIDWGS84); err == nil {
		t.Fatal("expected transform without source SRID to fail")
	}
	if _, err := Transform(Value{}, SRIDWGS84); err == nil {
		t.Fatal("expected transform of empty value to fail")
	}
}

func TestRegisterProjection(t *testing.T) {
	if err := RegisterProjection(nil); err == nil {
		t.Fatal("expected nil projection registration to fail")
	}

	custom := offsetProjection{code: 900913}
	if err := RegisterProjection(custom); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := ForSRID(900913)
	if err != nil {
		t.Fatalf("ForSRID after register: %v", err)
	}
	if got.EPSG() != 900913 {
		t.Fatalf("unexpected projection %d", got.EPSG())
	}
}

type offsetProjection struct {
	code int
}

func (p offsetProjection) EPSG() int { return p.code }

func (offsetProjection) ToWGS84(pt orb.Point) orb.Point {
	return orb.Point{pt[0] - 100, pt[1]}
}

func (offsetProjection) FromWGS84(pt orb.Point) orb.Point {
	return orb.Point{pt[0] + 100, pt[1]}
}
