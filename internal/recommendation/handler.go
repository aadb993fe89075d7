package recommendation

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Goopi7/crop-connect/internal/crops"
)

// CandidateView is a ranked crop as returned over HTTP
type CandidateView struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	ScientificName string                `json:"scientific_name,omitempty"`
	Description    string                `json:"description"`
	Categories     []string              `json:"categories"`
	Score          int                   `json:"score"`
	Breakdown      Breakdown             `json:"breakdown"`
	Why            []string              `json:"why"`
	Accuracy       Accuracy              `json:"accuracy"`
	Procedure      []crops.ProcedureStep `json:"procedure"`
}

// ResultView is the HTTP body of a recommendation response
type ResultView struct {
	Recommendations      []CandidateView `json:"recommendations"`
	Accuracy             Accuracy        `json:"accuracy"`
	TotalCropsEvaluated  int             `json:"total_crops_evaluated"`
	RecommendationsCount int             `json:"recommendations_count"`
	Climate              *ClimateData    `json:"climate,omitempty"`
}

// NewResultView builds the response body, keeping at most limit candidates.
// A limit of zero or less keeps every candidate; counts are never truncated.
func NewResultView(result *Result, limit int) ResultView {
	recs := result.Recommendations
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	views := make([]CandidateView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, CandidateView{
			ID:             rec.Crop.ID,
			Name:           rec.Crop.Name,
			ScientificName: rec.Crop.ScientificName,
			Description:    rec.Crop.Description,
			Categories:     rec.Crop.Categories,
			Score:          rec.Score,
			Breakdown:      rec.Breakdown,
			Why:            rec.Why,
			Accuracy:       rec.Accuracy,
			Procedure:      crops.BuildProcedure(rec.Crop),
		})
	}
	return ResultView{
		Recommendations:      views,
		Accuracy:             result.Accuracy,
		TotalCropsEvaluated:  result.TotalCropsEvaluated,
		RecommendationsCount: result.RecommendationsCount,
		Climate:              result.Climate,
	}
}

// Handler handles HTTP requests for crop recommendations
type Handler struct {
	engine      *Engine
	exporter    *Exporter
	exportLimit int
	logger      *zap.Logger
}

// NewHandler creates a new recommendation handler. exportLimit caps the rows
// of an exported ranking; zero means no cap.
func NewHandler(engine *Engine, exportLimit int, logger *zap.Logger) *Handler {
	return &Handler{
		engine:      engine,
		exporter:    NewExporter(),
		exportLimit: exportLimit,
		logger:      logger,
	}
}

// RegisterRoutes registers recommendation routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	recs := router.Group("/recommendations")
	{
		recs.POST("", h.recommend)
		recs.POST("/export", h.export)
		recs.GET("/tables", h.getTables)
	}
}

// recommend handles POST /api/v1/recommendations
func (h *Handler) recommend(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.Recommend(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "Failed to compute recommendations", err)
		return
	}

	c.JSON(http.StatusOK, NewResultView(result, getIntParam(c, "limit", 0)))
}

// export handles POST /api/v1/recommendations/export
func (h *Handler) export(c *gin.Context) {
	format, err := ParseExportFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.Recommend(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "Failed to compute recommendations", err)
		return
	}
	if h.exportLimit > 0 && len(result.Recommendations) > h.exportLimit {
		result.Recommendations = result.Recommendations[:h.exportLimit]
	}

	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, format, result); err != nil {
		h.respondError(c, "Failed to export recommendations", err)
		return
	}

	filename := fmt.Sprintf("crop_recommendations_%s.%s", time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// getTables handles GET /api/v1/recommendations/tables
func (h *Handler) getTables(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Tables())
}

// respondError maps engine errors onto HTTP statuses
func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case IsValidationError(err), errors.Is(err, ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// getIntParam gets an integer query parameter with a default value
func getIntParam(c *gin.Context, key string, defaultValue int) int {
	if v := c.Query(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}
