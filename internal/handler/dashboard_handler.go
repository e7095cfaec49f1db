package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unitrack-api/internal/dto"
	"github.com/noah-isme/unitrack-api/internal/middleware"
	"github.com/noah-isme/unitrack-api/internal/models"
	"github.com/noah-isme/unitrack-api/internal/service"
	"github.com/noah-isme/unitrack-api/pkg/response"
)

type dashboardService interface {
	Get(ctx context.Context, userID string) (*service.Dashboard, error)
}

// DashboardHandler serves the list view.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Get godoc
// @Summary Dashboard with status counts
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := h.service.Get(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	universities := dashboard.Universities
	if universities == nil {
		universities = []models.University{}
	}
	response.JSON(c, http.StatusOK, dto.DashboardResponse{
		Universities: universities,
		Summary: dto.DashboardSummary{
			Total:      dashboard.Total,
			Applying:   dashboard.StatusCounts[models.StatusApplying],
			Waiting:    dashboard.StatusCounts[models.StatusWaiting],
			Accepted:   dashboard.StatusCounts[models.StatusAccepted],
			Waitlisted: dashboard.StatusCounts[models.StatusWaitlisted],
			Rejected:   dashboard.StatusCounts[models.StatusRejected],
		},
	}, middleware.ExtractMeta(c))
}
