package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/middleware"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
	"github.com/noah-isme/alumni-mentorship-api/pkg/response"
)

type availabilityService interface {
	Get(ctx context.Context, alumniID string) (*models.MentorAvailability, bool, error)
	Update(ctx context.Context, alumniID string, req dto.UpdateAvailabilityRequest) (*models.MentorAvailability, error)
	Suggest(ctx context.Context, topics []string) ([]dto.MentorSuggestion, error)
}

// AlumniHandler exposes the mentorship settings of alumni profiles.
type AlumniHandler struct {
	service availabilityService
}

// NewAlumniHandler builds a new handler.
func NewAlumniHandler(service availabilityService) *AlumniHandler {
	return &AlumniHandler{service: service}
}

// Availability godoc
// @Summary Get an alumni's mentorship availability
// @Tags Alumni
// @Produce json
// @Param id path string true "Alumni user ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /alumni/{id}/availability [get]
func (h *AlumniHandler) Availability(c *gin.Context) {
	availability, cacheHit, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, availability, nil, middleware.ExtractMeta(c))
}

// UpdateMentorship godoc
// @Summary Update the caller's mentorship settings
// @Tags Alumni
// @Accept json
// @Produce json
// @Param payload body dto.UpdateAvailabilityRequest true "Mentorship settings"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /alumni/me/mentorship [put]
func (h *AlumniHandler) UpdateMentorship(c *gin.Context) {
	claims := currentUser(c)
	if claims == nil {
		return
	}
	var req dto.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	availability, err := h.service.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// Suggestions godoc
// @Summary Suggest open mentors for a set of topics
// @Tags Alumni
// @Produce json
// @Param topics query string true "Comma separated topics"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /alumni/suggestions [get]
func (h *AlumniHandler) Suggestions(c *gin.Context) {
	var topics []string
	for _, raw := range c.QueryArray("topics") {
		topics = append(topics, strings.Split(raw, ",")...)
	}
	items, err := h.service.Suggest(c.Request.Context(), topics)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"mentors": items}, nil)
}
