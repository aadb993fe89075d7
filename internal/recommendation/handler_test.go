package recommendation

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T, engine *Engine, exportLimit int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	NewHandler(engine, exportLimit, zap.NewNop()).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Recommend(t *testing.T) {
	router := setupRouter(t, newTestEngine(wheat(), pearlMillet(), tomatoes()), 0)

	w := postJSON(router, "/api/v1/recommendations", `{"soil_type":"loamy","ph":"6.8","location":"Punjab"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ResultView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalCropsEvaluated)
	assert.Equal(t, 3, resp.RecommendationsCount)
	require.Len(t, resp.Recommendations, 3)
	require.NotNil(t, resp.Climate)
	assert.Equal(t, "Temperate", resp.Climate.ClimateZone)

	top := resp.Recommendations[0]
	assert.Equal(t, "Wheat", top.Name)
	assert.NotEmpty(t, top.ID)
	assert.Equal(t, "Triticum aestivum", top.ScientificName)
	assert.Len(t, top.Procedure, 7)
	assert.Equal(t, "Land Preparation", top.Procedure[0].Step)
	assert.Contains(t, top.Why, "Ideal pH level of 6.8 (optimal for this crop)")
	for i := 1; i < len(resp.Recommendations); i++ {
		assert.GreaterOrEqual(t, resp.Recommendations[i-1].Score, resp.Recommendations[i].Score)
	}
}

func TestHandler_RecommendLimit(t *testing.T) {
	router := setupRouter(t, newTestEngine(wheat(), pearlMillet(), tomatoes()), 0)

	w := postJSON(router, "/api/v1/recommendations?limit=1", `{"soil_type":"loamy"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ResultView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Recommendations, 1)
	assert.Equal(t, 3, resp.RecommendationsCount)
	assert.Nil(t, resp.Climate)
}

func TestHandler_RecommendValidation(t *testing.T) {
	source := new(mockSource)
	router := setupRouter(t, NewEngine(source, nil, nil), 0)

	w := postJSON(router, "/api/v1/recommendations", `{"season":"rabi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"soil_type is required for crop recommendations"}`, w.Body.String())

	w = postJSON(router, "/api/v1/recommendations", `{"soil_type":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	source.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestHandler_RecommendStoreFailure(t *testing.T) {
	source := new(mockSource)
	source.On("FindAll", mock.Anything, "").Return(nil, errors.New("store offline"))
	router := setupRouter(t, NewEngine(source, nil, nil), 0)

	w := postJSON(router, "/api/v1/recommendations", `{"soil_type":"loamy"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "store offline")
}

func TestHandler_Export(t *testing.T) {
	router := setupRouter(t, newTestEngine(wheat(), pearlMillet(), tomatoes()), 2)

	w := postJSON(router, "/api/v1/recommendations/export?format=csv", `{"soil_type":"loamy"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	// header plus the capped two rows
	assert.Equal(t, 3, bytes.Count(w.Body.Bytes(), []byte("\n")))

	w = postJSON(router, "/api/v1/recommendations/export", `{"soil_type":"loamy"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, FormatXLSX.ContentType(), w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	w = postJSON(router, "/api/v1/recommendations/export?format=pdf", `{"soil_type":"loamy"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/v1/recommendations/export?format=csv", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Tables(t *testing.T) {
	router := setupRouter(t, newTestEngine(), 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/tables", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var tables Tables
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tables))
	assert.Equal(t, DefaultTables().SeasonMonths, tables.SeasonMonths)
	assert.Equal(t, "Temperate", tables.Regions[0].ClimateZone)
}
