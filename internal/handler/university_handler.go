package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unitrack-api/internal/middleware"
	"github.com/noah-isme/unitrack-api/internal/models"
	"github.com/noah-isme/unitrack-api/internal/service"
	appErrors "github.com/noah-isme/unitrack-api/pkg/errors"
	"github.com/noah-isme/unitrack-api/pkg/response"
)

type universityService interface {
	List(ctx context.Context, userID string) ([]models.University, error)
	Get(ctx context.Context, id, userID string) (*models.University, error)
	Delete(ctx context.Context, id, userID string) error
}

type universityForm interface {
	Load(ctx context.Context, id, userID string) (*service.UniversityDraft, error)
	Create(ctx context.Context, userID string, draft service.UniversityDraft) (*service.FormResult, error)
	Update(ctx context.Context, id, userID string, draft service.UniversityDraft) (*service.FormResult, error)
}

// UniversityHandler exposes record CRUD plus the add/edit form flow.
type UniversityHandler struct {
	universities universityService
	forms        universityForm
}

// NewUniversityHandler constructs the handler.
func NewUniversityHandler(universities universityService, forms universityForm) *UniversityHandler {
	return &UniversityHandler{universities: universities, forms: forms}
}

// List godoc
// @Summary List the caller's universities, newest first
// @Tags Universities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /universities [get]
func (h *UniversityHandler) List(c *gin.Context) {
	items, err := h.universities.List(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []models.University{}
	}
	response.JSON(c, http.StatusOK, items, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get a university
// @Tags Universities
// @Produce json
// @Security BearerAuth
// @Param id path string true "University ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /universities/{id} [get]
func (h *UniversityHandler) Get(c *gin.Context) {
	item, err := h.universities.Get(c.Request.Context(), c.Param("id"), userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, middleware.ExtractMeta(c))
}

// Form godoc
// @Summary Prefill values for the edit form
// @Tags Universities
// @Produce json
// @Security BearerAuth
// @Param id path string true "University ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /universities/{id}/form [get]
func (h *UniversityHandler) Form(c *gin.Context) {
	draft, err := h.forms.Load(c.Request.Context(), c.Param("id"), userIDFromContext(c))
	if err != nil {
		// A failed prefill is terminal for the form; the client offers a way back.
		middleware.SetMeta(c, "back", service.FormRedirect)
		response.Error(c, err, middleware.ExtractMeta(c))
		return
	}
	middleware.SetMeta(c, "state", models.FormStateReady)
	response.JSON(c, http.StatusOK, draft, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Add a university
// @Tags Universities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.UniversityDraft true "Form values"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /universities [post]
func (h *UniversityHandler) Create(c *gin.Context) {
	draft, ok := bindDraft(c)
	if !ok {
		return
	}
	result, err := h.forms.Create(c.Request.Context(), userIDFromContext(c), draft)
	if err != nil {
		formError(c, err)
		return
	}
	formSuccess(c, http.StatusCreated, result)
}

// Update godoc
// @Summary Replace a university's fields
// @Tags Universities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "University ID"
// @Param payload body service.UniversityDraft true "Form values"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /universities/{id} [put]
func (h *UniversityHandler) Update(c *gin.Context) {
	draft, ok := bindDraft(c)
	if !ok {
		return
	}
	result, err := h.forms.Update(c.Request.Context(), c.Param("id"), userIDFromContext(c), draft)
	if err != nil {
		formError(c, err)
		return
	}
	formSuccess(c, http.StatusOK, result)
}

// Delete godoc
// @Summary Delete a university
// @Tags Universities
// @Security BearerAuth
// @Param id path string true "University ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /universities/{id} [delete]
func (h *UniversityHandler) Delete(c *gin.Context) {
	if err := h.universities.Delete(c.Request.Context(), c.Param("id"), userIDFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func bindDraft(c *gin.Context) (service.UniversityDraft, bool) {
	var draft service.UniversityDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		formError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid university payload"))
		return draft, false
	}
	return draft, true
}

func formSuccess(c *gin.Context, status int, result *service.FormResult) {
	middleware.SetMeta(c, "state", result.State)
	middleware.SetMeta(c, "redirect", result.Redirect)
	response.JSON(c, status, result.University, middleware.ExtractMeta(c))
}

func formError(c *gin.Context, err error) {
	middleware.SetMeta(c, "state", models.FormStateReadyWithError)
	response.Error(c, err, middleware.ExtractMeta(c))
}
