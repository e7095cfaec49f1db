package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unitrack-api/internal/dto"
	"github.com/noah-isme/unitrack-api/pkg/response"
)

var navigationItems = []dto.NavigationItem{
	{Label: "Dashboard", Path: "/dashboard", Icon: "home"},
	{Label: "Add University", Path: "/dashboard/add", Icon: "plus"},
	{Label: "Analytics", Path: "/dashboard/analytics", Icon: "chart"},
	{Label: "Settings", Path: "/dashboard/settings", Icon: "settings"},
}

// NavigationHandler serves the authenticated shell's navigation.
type NavigationHandler struct {
	apiPrefix string
}

// NewNavigationHandler constructs the handler; apiPrefix is used to build
// the sign-out endpoint.
func NewNavigationHandler(apiPrefix string) *NavigationHandler {
	return &NavigationHandler{apiPrefix: apiPrefix}
}

// Get godoc
// @Summary Navigation entries
// @Tags Navigation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /navigation [get]
func (h *NavigationHandler) Get(c *gin.Context) {
	items := make([]dto.NavigationItem, len(navigationItems))
	copy(items, navigationItems)
	response.JSON(c, http.StatusOK, dto.NavigationResponse{
		Items: items,
		SignOut: dto.NavigationAction{
			Label:    "Sign Out",
			Method:   http.MethodPost,
			Endpoint: h.apiPrefix + "/auth/logout",
			Redirect: LogoutRedirect,
		},
	})
}
