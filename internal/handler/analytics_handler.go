package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unitrack-api/internal/middleware"
	"github.com/noah-isme/unitrack-api/internal/models"
	"github.com/noah-isme/unitrack-api/pkg/response"
)

type analyticsService interface {
	Summary(ctx context.Context, userID string) (*models.AnalyticsSummary, bool, error)
}

// AnalyticsHandler exposes the analytics view.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary godoc
// @Summary Aggregates over the caller's universities
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /analytics [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, cacheHit, err := h.analytics.Summary(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}
