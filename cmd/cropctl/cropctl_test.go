package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goopi7/crop-connect/internal/recommendation"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecommend_JSON(t *testing.T) {
	out, err := run(t, "recommend", "--soil-type", "Loamy", "--location", "punjab", "--format", "json", "--limit", "2")
	require.NoError(t, err)

	var view recommendation.ResultView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 6, view.TotalCropsEvaluated)
	assert.LessOrEqual(t, len(view.Recommendations), 2)
	require.NotNil(t, view.Climate)
	assert.Equal(t, "Temperate", view.Climate.ClimateZone)
	for i := 1; i < len(view.Recommendations); i++ {
		assert.GreaterOrEqual(t, view.Recommendations[i-1].Score, view.Recommendations[i].Score)
	}
}

func TestRecommend_Table(t *testing.T) {
	out, err := run(t, "recommend", "--soil-type", "loamy", "--ph", "6.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Recommendations:")
	assert.Contains(t, out, "of 6 crops")
	assert.Contains(t, out, "Economics")
}

func TestRecommend_EnvBinding(t *testing.T) {
	t.Setenv("CROPCTL_RECOMMEND_SOIL_TYPE", "clay")
	t.Setenv("CROPCTL_RECOMMEND_MIN_SCORE", "101")

	out, err := run(t, "recommend", "--format", "json")
	require.NoError(t, err)

	var view recommendation.ResultView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Empty(t, view.Recommendations)
	assert.Equal(t, 6, view.TotalCropsEvaluated)
}

func TestRecommend_Errors(t *testing.T) {
	_, err := run(t, "recommend")
	assert.True(t, errors.Is(err, recommendation.ErrSoilTypeRequired))

	_, err = run(t, "recommend", "--soil-type", "loamy", "--format", "xml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = run(t, "recommend", "--soil-type", "loamy", "--catalog", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRecommend_CustomCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crops.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Barley","description":"cereal",
		"soil_requirements":{"soil_types":["loamy"]}}]`), 0o600))

	out, err := run(t, "recommend", "--soil-type", "loamy", "--catalog", path, "--format", "json")
	require.NoError(t, err)

	var view recommendation.ResultView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Recommendations, 1)
	assert.Equal(t, "Barley", view.Recommendations[0].Name)
	assert.Equal(t, float64(100), view.Recommendations[0].Breakdown.Soil)
}

func TestTables(t *testing.T) {
	out, err := run(t, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "punjab")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("regions: [unclosed"), 0o600))
	_, err = run(t, "tables", "--tables", path)
	assert.Error(t, err)
}

func TestSeed_Memory(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "none.json"))
	t.Setenv("STORE_DRIVER", "memory")

	out, err := run(t, "seed", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 crops")
	assert.Contains(t, out, "Seeded 6 crops into memory store")
}

func TestRecommend_Boundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.geojson")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"Feature","properties":{},"geometry":
		{"type":"Point","coordinates":[75.8,30.9]}}`), 0o600))

	_, err := run(t, "recommend", "--soil-type", "loamy", "--boundary", path)
	assert.True(t, recommendation.IsValidationError(err))
}

func TestRecommend_SeasonHelpListsKnownSeasons(t *testing.T) {
	tables := recommendation.DefaultTables()
	for _, f := range requestTextFlags {
		if f.name != "season" {
			continue
		}
		list := f.usage[strings.Index(f.usage, "(")+1 : strings.Index(f.usage, ")")]
		for _, season := range strings.Split(list, "|") {
			assert.Contains(t, tables.SeasonMonths, season)
		}
	}
}
