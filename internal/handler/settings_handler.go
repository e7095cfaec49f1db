package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unitrack-api/internal/dto"
	"github.com/noah-isme/unitrack-api/internal/models"
	appErrors "github.com/noah-isme/unitrack-api/pkg/errors"
	"github.com/noah-isme/unitrack-api/pkg/response"
)

type profileService interface {
	Profile(ctx context.Context, accessToken string) (*models.UserInfo, error)
}

// SettingsHandler serves the settings view.
type SettingsHandler struct {
	profiles profileService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(profiles profileService) *SettingsHandler {
	return &SettingsHandler{profiles: profiles}
}

// Get godoc
// @Summary Account details
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	user, err := h.profiles.Profile(c.Request.Context(), tokenFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SettingsResponse{
		UserID:      user.ID,
		Email:       user.Email,
		MemberSince: user.CreatedAt,
	})
}

// DeleteAccount godoc
// @Summary Delete the account (not available)
// @Tags Settings
// @Security BearerAuth
// @Failure 501 {object} response.Envelope
// @Router /settings/account [delete]
func (h *SettingsHandler) DeleteAccount(c *gin.Context) {
	response.Error(c, appErrors.Clone(appErrors.ErrNotImplemented, "account deletion is not available"))
}

// ExportData godoc
// @Summary Export account data (not available)
// @Tags Settings
// @Security BearerAuth
// @Failure 501 {object} response.Envelope
// @Router /settings/export [post]
func (h *SettingsHandler) ExportData(c *gin.Context) {
	response.Error(c, appErrors.Clone(appErrors.ErrNotImplemented, "data export is not available"))
}
