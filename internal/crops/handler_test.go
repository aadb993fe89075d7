package crops

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T) (*gin.Engine, *MemoryRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := seededMemory(t)
	handler := NewHandler(NewService(repo, zap.NewNop()), zap.NewNop())

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router, repo
}

func firstID(t *testing.T, repo *MemoryRepository) string {
	all, err := repo.FindAll(context.Background(), "")
	require.NoError(t, err)
	return all[0].ID
}

func TestHandler_ListCrops(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/crops?category=cereal&limit=2&sortBy=-name", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.Total)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Wheat", resp.Crops[0].Name)
	assert.Equal(t, "Rice", resp.Crops[1].Name)
}

func TestHandler_GetCrop(t *testing.T) {
	router, repo := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/crops/"+firstID(t, repo), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Wheat"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/crops/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Procedure(t *testing.T) {
	router, repo := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/crops/"+firstID(t, repo)+"/procedure", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Procedure []ProcedureStep `json:"procedure"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Procedure, 7)
}

func TestHandler_DownloadGuide(t *testing.T) {
	router, repo := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/crops/"+firstID(t, repo)+"/guide.pdf", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "wheat_guide.pdf")
}

func TestHandler_CreateUpdateDelete(t *testing.T) {
	router, _ := setupRouter(t)

	body, _ := json.Marshal(sampleCrop("Barley"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/crops", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)

	var created CropRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/crops", bytes.NewReader(body)))
	assert.Equal(t, http.StatusConflict, w.Code)

	update := sampleCrop("Barley")
	update.Description = "two-row barley"
	body, _ = json.Marshal(update)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/crops/"+created.ID, bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "two-row barley")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/crops/"+created.ID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/crops/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_CreateInvalid(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/crops", bytes.NewBufferString(`{"name":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "description is required")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/crops", bytes.NewBufferString(`{bad json`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
