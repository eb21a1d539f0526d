package geo

import (
	"errors"
	"math"
	"testing"
)

const featureCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "Testland"},
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [
          [[[-10.0, 40.0], [5.0, 40.0], [5.0, 50.0], [-10.0, 50.0], [-10.0, 40.0]]],
          [[[8.0, 41.0], [9.5, 41.0], [9.5, 43.0], [8.0, 41.0]]]
        ]
      }
    }
  ]
}`

func TestParseGeoJSONBounds(t *testing.T) {
	shape, err := ParseGeoJSON(featureCollection)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if shape.Type != "FeatureCollection" {
		t.Fatalf("unexpected type %q", shape.Type)
	}
	if len(shape.Points) != 9 {
		t.Fatalf("expected 9 points, got %d", len(shape.Points))
	}

	bounds := shape.Bounds()
	assertNear(t, "min lat", 40, bounds.MinLat)
	assertNear(t, "max lat", 50, bounds.MaxLat)
	assertNear(t, "min lng", -10, bounds.MinLng)
	assertNear(t, "max lng", 9.5, bounds.MaxLng)
	assertNear(t, "center lat", 45, bounds.CenterLat)

	if !bounds.Contains(45, 0) {
		t.Fatalf("expected bounds to contain 45,0")
	}
	if bounds.Contains(10, 0) {
		t.Fatalf("expected bounds to exclude 10,0")
	}
}

func TestBoundsAcrossAntimeridian(t *testing.T) {
	shape, err := ParseGeoJSON(`{"type":"Polygon","coordinates":[[[179.0,-16.0],[-179.0,-16.0],[-179.0,-18.0],[179.0,-18.0],[179.0,-16.0]]]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	bounds := shape.Bounds()
	if bounds.MinLng <= bounds.MaxLng {
		t.Fatalf("expected wrapped longitude interval, got %+v", bounds)
	}
	if !bounds.Contains(-17, 179.5) || !bounds.Contains(-17, -179.5) {
		t.Fatalf("expected bounds to contain points near the antimeridian: %+v", bounds)
	}
	if bounds.Contains(-17, 0) {
		t.Fatalf("expected bounds to exclude the prime meridian: %+v", bounds)
	}
}

func TestParseGeoJSONErrors(t *testing.T) {
	if _, err := ParseGeoJSON(`{"type":"FeatureCollection","features":[]}`); !errors.Is(err, ErrNoCoordinates) {
		t.Fatalf("expected ErrNoCoordinates, got %v", err)
	}
	if _, err := ParseGeoJSON(`{"type":`); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := ParseGeoJSON(`{"type":"Point","coordinates":[1.0]}`); err == nil {
		t.Fatalf("expected error for incomplete position")
	}
}

func assertNear(t *testing.T, label string, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > 1e-6 {
		t.Fatalf("%s: want %v, got %v", label, want, got)
	}
}
