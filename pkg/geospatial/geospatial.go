package geospatial

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

const (
	squareMetersPerHectare = 10000
	squareMetersPerAcre    = 4046.8564224
)

// ErrNotPolygon is returned when a boundary does not enclose an area
var ErrNotPolygon = errors.New("field boundary must be a Polygon or MultiPolygon")

// ParseBoundary decodes a GeoJSON Feature or bare geometry describing a field
func ParseBoundary(raw []byte) (orb.Geometry, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("invalid GeoJSON: %w", err)
	}

	var geometry orb.Geometry
	if probe.Type == "Feature" {
		feature, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid GeoJSON feature: %w", err)
		}
		geometry = feature.Geometry
	} else {
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid GeoJSON geometry: %w", err)
		}
		geometry = g.Geometry()
	}

	if geometry == nil {
		return nil, errors.New("invalid GeoJSON: no geometry")
	}
	switch geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return geometry, nil
	default:
		return nil, ErrNotPolygon
	}
}

// CalculateArea returns the geodesic area of a lon/lat geometry in square meters
func CalculateArea(geometry orb.Geometry) float64 {
	return geo.Area(geometry)
}

// CalculateCentroid returns the area-weighted centroid of a geometry
func CalculateCentroid(geometry orb.Geometry) orb.Point {
	centroid, _ := planar.CentroidArea(geometry)
	return centroid
}

// ConvertToHectares converts square meters to hectares
func ConvertToHectares(sqMeters float64) float64 {
	return sqMeters / squareMetersPerHectare
}

// ConvertToAcres converts square meters to acres
func ConvertToAcres(sqMeters float64) float64 {
	return sqMeters / squareMetersPerAcre
}
