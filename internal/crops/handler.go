package crops

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the crop catalogue
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new crops handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers crop catalogue routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	crops := router.Group("/crops")
	{
		crops.GET("", h.listCrops)
		crops.GET("/:id", h.getCrop)
		crops.GET("/:id/procedure", h.getProcedure)
		crops.GET("/:id/guide.pdf", h.downloadGuide)
		crops.POST("", h.createCrop)
		crops.PUT("/:id", h.updateCrop)
		crops.DELETE("/:id", h.deleteCrop)
	}
}

// listCrops handles GET /api/v1/crops
func (h *Handler) listCrops(c *gin.Context) {
	filter := ListFilter{
		Category:         c.Query("category"),
		ClimateZone:      c.Query("climate_zone"),
		SowMonth:         getIntParam(c, "sow_month", 0),
		SoilType:         c.Query("soil_type"),
		DroughtTolerance: c.Query("drought_tolerance"),
		Search:           strings.TrimSpace(c.Query("search")),
		Page:             getIntParam(c, "page", 1),
		Limit:            getIntParam(c, "limit", 20),
		Sort:             c.DefaultQuery("sortBy", "name"),
	}

	response, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, "Failed to list crops", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// getCrop handles GET /api/v1/crops/:id
func (h *Handler) getCrop(c *gin.Context) {
	crop, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to get crop", err)
		return
	}

	c.JSON(http.StatusOK, crop)
}

// getProcedure handles GET /api/v1/crops/:id/procedure
func (h *Handler) getProcedure(c *gin.Context) {
	steps, err := h.service.Procedure(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to build procedure", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"procedure": steps})
}

// downloadGuide handles GET /api/v1/crops/:id/guide.pdf
func (h *Handler) downloadGuide(c *gin.Context) {
	var buf bytes.Buffer
	crop, err := h.service.RenderGuide(c.Request.Context(), c.Param("id"), &buf)
	if err != nil {
		h.respondError(c, "Failed to render crop guide", err)
		return
	}

	filename := strings.ReplaceAll(strings.ToLower(crop.Name), " ", "_") + "_guide.pdf"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// createCrop handles POST /api/v1/crops
func (h *Handler) createCrop(c *gin.Context) {
	var req CropRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crop, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create crop", err)
		return
	}

	c.JSON(http.StatusCreated, crop)
}

// updateCrop handles PUT /api/v1/crops/:id
func (h *Handler) updateCrop(c *gin.Context) {
	var req CropRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crop, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, "Failed to update crop", err)
		return
	}

	c.JSON(http.StatusOK, crop)
}

// deleteCrop handles DELETE /api/v1/crops/:id
func (h *Handler) deleteCrop(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, "Failed to delete crop", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// respondError maps service errors onto HTTP statuses
func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidCrop):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
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
