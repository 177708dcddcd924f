package geometry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

const ewktPrefix = "SRID="

// ParseWKT decodes a well-known-text payload into an orb geometry.
func ParseWKT(input string) (orb.Geometry, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errors.New("geometry: empty WKT payload")
	}
	geom, err := wkt.Unmarshal(input)
	if err != nil {
		return nil, fmt.Errorf("geometry: parse WKT: %w", err)
	}
	return geom, nil
}

// EncodeWKT renders a geometry as well-known text.
func EncodeWKT(geom orb.Geometry) (string, error) {
	if geom == nil {
		return "", errors.New("geometry: cannot encode nil geometry")
	}
	return wkt.MarshalString(geom), nil
}

// ParseEWKT decodes extended WKT ("SRID=4326;POINT(1 2)"). Plain WKT is
// accepted too and yields a value with SRID 0; callers decide the fallback.
func ParseEWKT(input string) (Value, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Value{}, errors.New("geometry: empty EWKT payload")
	}

	srid := 0
	if strings.HasPrefix(strings.ToUpper(input), ewktPrefix) {
		head, rest, found := strings.Cut(input, ";")
		if !found {
			return Value{}, fmt.Errorf("geometry: malformed EWKT %q: missing separator", input)
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(head[len(ewktPrefix):]))
		if err != nil || parsed <= 0 {
			return Value{}, fmt.Errorf("geometry: malformed EWKT SRID in %q", head)
		}
		srid = parsed
		input = strings.TrimSpace(rest)
	}

	geom, err := ParseWKT(input)
	if err != nil {
		return Value{}, err
	}
	return Value{Geom: geom, SRID: srid}, nil
}

// EncodeEWKT renders a value as extended WKT with its SRID prefix. Values
// without an SRID encode as plain WKT.
func EncodeEWKT(v Value) (string, error) {
	text, err := EncodeWKT(v.Geom)
	if err != nil {
		return "", err
	}
	if v.SRID == 0 {
		return text, nil
	}
	return fmt.Sprintf("SRID=%d;%s", v.SRID, text), nil
}

// ParseGeoJSON decodes a GeoJSON geometry object.
func ParseGeoJSON(data []byte) (orb.Geometry, error) {
	if len(data) == 0 {
		return nil, errors.New("geometry: empty GeoJSON payload")
	}
	decoded, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("geometry: parse GeoJSON: %w", err)
	}
	return decoded.Geometry(), nil
}

// EncodeGeoJSON renders a geometry as a GeoJSON geometry object.
func EncodeGeoJSON(geom orb.Geometry) ([]byte, error) {
	if geom == nil {
		return nil, errors.New("geometry: cannot encode nil geometry")
	}
	data, err := geojson.NewGeometry(geom).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("geometry: encode GeoJSON: %w", err)
	}
	return data, nil
}

// Parse auto-detects the payload format: GeoJSON objects start with "{", EWKT
// with the SRID prefix, everything else is treated as plain WKT. The fallback
// SRID applies whenever the payload does not carry its own.
func Parse(input string, fallbackSRID int) (Value, error) {
	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == "":
		return Value{}, errors.New("geometry: empty payload")
	case strings.HasPrefix(trimmed, "{"):
		geom, err := ParseGeoJSON([]byte(trimmed))
		if err != nil {
			return Value{}, err
		}
		return Value{Geom: geom, SRID: fallbackSRID}, nil
	default:
		value, err := ParseEWKT(trimmed)
		if err != nil {
			return Value{}, err
		}
		if value.SRID == 0 {
			value.SRID = fallbackSRID
		}
		return value, nil
	}
}
