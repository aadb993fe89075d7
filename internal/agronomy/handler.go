package agronomy

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for agronomy advice
type Handler struct {
	advisor *Advisor
	logger  *zap.Logger
}

// NewHandler creates a new agronomy handler
func NewHandler(advisor *Advisor, logger *zap.Logger) *Handler {
	return &Handler{
		advisor: advisor,
		logger:  logger,
	}
}

// RegisterRoutes registers agronomy routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	agronomy := router.Group("/agronomy")
	{
		agronomy.GET("/advice", h.getAdvice)
		agronomy.POST("/records", h.createRecord)
	}
}

// getAdvice handles GET /api/v1/agronomy/advice
func (h *Handler) getAdvice(c *gin.Context) {
	var q Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	advice, err := h.advisor.Advise(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, "Failed to resolve agronomy advice", err)
		return
	}

	c.JSON(http.StatusOK, advice)
}

// createRecord handles POST /api/v1/agronomy/records
func (h *Handler) createRecord(c *gin.Context) {
	var req Record
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = ""

	record, err := h.advisor.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to create agronomy record", err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, ErrCropRequired), errors.Is(err, ErrInvalidRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
