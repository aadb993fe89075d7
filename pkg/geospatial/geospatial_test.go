package geospatial

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roughly 111 m x 111 m near the equator
const squareField = `{"type":"Polygon","coordinates":[[[0,0],[0.001,0],[0.001,0.001],[0,0.001],[0,0]]]}`

func TestParseBoundary(t *testing.T) {
	g, err := ParseBoundary([]byte(squareField))
	require.NoError(t, err)
	assert.IsType(t, orb.Polygon{}, g)

	feature := `{"type":"Feature","properties":{"name":"north plot"},"geometry":` + squareField + `}`
	g, err = ParseBoundary([]byte(feature))
	require.NoError(t, err)
	assert.IsType(t, orb.Polygon{}, g)
}

func TestParseBoundary_Errors(t *testing.T) {
	_, err := ParseBoundary([]byte(`{"type":"Point","coordinates":[75.8,30.9]}`))
	assert.ErrorIs(t, err, ErrNotPolygon)

	_, err = ParseBoundary([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseBoundary([]byte(`{"type":"Feature","properties":{}}`))
	assert.Error(t, err)
}

func TestArea(t *testing.T) {
	g, err := ParseBoundary([]byte(squareField))
	require.NoError(t, err)

	area := CalculateArea(g)
	assert.InDelta(t, 12364, area, 200)
	assert.InDelta(t, 1.2364, ConvertToHectares(area), 0.02)
	assert.InDelta(t, 3.055, ConvertToAcres(area), 0.05)

	c := CalculateCentroid(g)
	assert.InDelta(t, 0.0005, c.Lon(), 1e-9)
	assert.InDelta(t, 0.0005, c.Lat(), 1e-9)
}
