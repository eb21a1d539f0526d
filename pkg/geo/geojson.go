// Package geo reads country boundary GeoJSON and derives bounding boxes.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// ErrNoCoordinates is returned when a document holds no positions.
var ErrNoCoordinates = errors.New("geo: document has no coordinates")

// Bounds is a latitude/longitude rectangle in degrees. When a shape crosses
// the antimeridian MinLng is greater than MaxLng.
type Bounds struct {
	MinLat    float64 `json:"min_lat"`
	MinLng    float64 `json:"min_lng"`
	MaxLat    float64 `json:"max_lat"`
	MaxLng    float64 `json:"max_lng"`
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
}

// Shape is the set of positions found in a GeoJSON document.
type Shape struct {
	Type   string
	Points []s2.LatLng
}

type document struct {
	Type        string          `json:"type"`
	Features    []document      `json:"features"`
	Geometry    *document       `json:"geometry"`
	Geometries  []document      `json:"geometries"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseGeoJSON reads a FeatureCollection, Feature, GeometryCollection or bare
// geometry and collects every position it contains.
func ParseGeoJSON(text string) (*Shape, error) {
	var doc document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("geo: decode: %w", err)
	}
	shape := &Shape{Type: doc.Type}
	if err := collect(&doc, shape); err != nil {
		return nil, err
	}
	if len(shape.Points) == 0 {
		return nil, ErrNoCoordinates
	}
	return shape, nil
}

func collect(doc *document, shape *Shape) error {
	for i := range doc.Features {
		if err := collect(&doc.Features[i], shape); err != nil {
			return err
		}
	}
	for i := range doc.Geometries {
		if err := collect(&doc.Geometries[i], shape); err != nil {
			return err
		}
	}
	if doc.Geometry != nil {
		if err := collect(doc.Geometry, shape); err != nil {
			return err
		}
	}
	if len(doc.Coordinates) == 0 {
		return nil
	}
	var coords any
	if err := json.Unmarshal(doc.Coordinates, &coords); err != nil {
		return fmt.Errorf("geo: decode %s coordinates: %w", doc.Type, err)
	}
	return walk(coords, shape)
}

// walk descends nested coordinate arrays. A position is an array whose first
// element is a number: [lng, lat, (alt)].
func walk(node any, shape *Shape) error {
	items, ok := node.([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	if lng, ok := items[0].(float64); ok {
		if len(items) < 2 {
			return fmt.Errorf("geo: position %v needs longitude and latitude", items)
		}
		lat, ok := items[1].(float64)
		if !ok {
			return fmt.Errorf("geo: position %v has non numeric latitude", items)
		}
		shape.Points = append(shape.Points, s2.LatLngFromDegrees(lat, lng))
		return nil
	}
	for _, item := range items {
		if err := walk(item, shape); err != nil {
			return err
		}
	}
	return nil
}

// Rect returns the smallest s2 rectangle containing every point.
func (s *Shape) Rect() s2.Rect {
	rect := s2.EmptyRect()
	for _, point := range s.Points {
		rect = rect.AddPoint(point)
	}
	return rect
}

// Bounds returns Rect expressed in degrees.
func (s *Shape) Bounds() Bounds {
	rect := s.Rect()
	center := rect.Center()
	return Bounds{
		MinLat:    rect.Lo().Lat.Degrees(),
		MinLng:    rect.Lo().Lng.Degrees(),
		MaxLat:    rect.Hi().Lat.Degrees(),
		MaxLng:    rect.Hi().Lng.Degrees(),
		CenterLat: center.Lat.Degrees(),
		CenterLng: center.Lng.Degrees(),
	}
}

// Contains reports whether the point lies inside the bounds, honouring
// rectangles that wrap across the antimeridian.
func (b Bounds) Contains(lat, lng float64) bool {
	rect := s2.Rect{
		Lat: r1.Interval{Lo: degrees(b.MinLat), Hi: degrees(b.MaxLat)},
		Lng: s1.IntervalFromEndpoints(degrees(b.MinLng), degrees(b.MaxLng)),
	}
	return rect.ContainsLatLng(s2.LatLngFromDegrees(lat, lng))
}

func degrees(value float64) float64 {
	return (s1.Angle(value) * s1.Degree).Radians()
}
