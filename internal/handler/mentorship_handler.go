package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/middleware"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/pkg/response"
)

type mentorshipService interface {
	Submit(ctx context.Context, studentID, alumniID string) (*models.MentorshipRequest, error)
	Accept(ctx context.Context, alumniID, requestID string) error
	Reject(ctx context.Context, alumniID, requestID string) error
	ListIncoming(ctx context.Context, alumniID string) ([]dto.IncomingMentorshipItem, error)
	ListMine(ctx context.Context, studentID string) ([]dto.StudentMentorshipItem, error)
	ListAccepted(ctx context.Context, alumniID string) ([]dto.AcceptedMentorshipItem, error)
	ListQueue(ctx context.Context, alumniID string) ([]dto.QueuedMentorshipItem, error)
	Summary(ctx context.Context, alumniID string) (*models.MentorshipSummary, bool, error)
	ExportAccepted(ctx context.Context, alumniID string, format dto.ExportFormat) (*dto.ExportFile, error)
}

// MentorshipHandler exposes the mentorship request workflow.
type MentorshipHandler struct {
	service mentorshipService
}

// NewMentorshipHandler builds a new handler.
func NewMentorshipHandler(service mentorshipService) *MentorshipHandler {
	return &MentorshipHandler{service: service}
}

// Submit godoc
// @Summary Request mentorship from an alumni
// @Description Creates a PENDING request while the mentor has room, otherwise queues it.
// @Tags Mentorship
// @Produce json
// @Param alumniId path string true "Alumni user ID"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /mentorship/request/{alumniId} [post]
func (h *MentorshipHandler) Submit(c *gin.Context) {
	claims := currentUser(c)
	if claims == nil {
		return
	}
	req, err := h.service.Submit(c.Request.Context(), claims.UserID, c.Param("alumniId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"request": req})
}

// Accept godoc
// @Summary Accept a pending request
// @Tags Mentorship
// @Produce json
// @Param requestId path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentorship/{requestId}/accept [post]
func (h *MentorshipHandler) Accept(c *gin.Context) {
	claims := currentUser(c)
	if claims == nil {
		return
	}
	if err := h.service.Accept(c.Request.Context(), claims.UserID, c.Param("requestId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Mentorship request accepted")
}

// Reject godoc
// @Summary Reject a pending request
// @Tags Mentorship
// @Produce json
// @Param requestId path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentorship/{requestId}/reject [post]
func (h *MentorshipHandler) Reject(c *gin.Context) {
	claims := currentUser(c)
	if claims == nil {
		return
	}
	if err := h.service.Reject(c.Request.Context(), claims.UserID, c.Param("requestId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Mentorship request rejected")
}

// Incoming godoc
// @Summary List pending requests addressed to the caller
// @Tags Mentorship
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentorship/incoming [get]
func (h *MentorshipHandler) Incoming(c *gin.Context) {
	claims := currentUser(c)
	if claims == nil {
		return
	}
	items, err := h.service.ListIncoming(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"requests": items}, nil)
}

// Mine godoc
// @Summary List the caller's own requests
// @Tags Mentorship
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentorship/my-requests [get]
func (h *MentorshipHandler) Mine(c *gin.Context) {
	claims := currentUser(c)
	if claims == nil {
		return
	}
	items, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"requests": items}, nil)
}

// Accepted godoc
// @Summary List the caller's accepted mentees
// @Tags Mentorship
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentorship/accepted [get]
func (h *MentorshipHandler) Accepted(c *gin.Context) {
	claims := currentUser(c)
	if claims == nil {
		return
	}
	items, err := h.service.ListAccepted(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"mentorships": items}, nil)
}

// Queue godoc
// @Summary List the caller's waiting queue in order
// @Tags Mentorship
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentorship/queue [get]
func (h *MentorshipHandler) Queue(c *gin.Context) {
	claims := currentUser(c)
	if claims == nil {
		return
	}
	items, err := h.service.ListQueue(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"requests": items}, nil)
}

// Summary godoc
// @Summary Request counts and open slots for the caller
// @Tags Mentorship
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentorship/summary [get]
func (h *MentorshipHandler) Summary(c *gin.Context) {
	claims := currentUser(c)
	if claims == nil {
		return
	}
	summary, cacheHit, err := h.service.Summary(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the accepted mentee roster
// @Tags Mentorship
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /mentorship/accepted/export [get]
func (h *MentorshipHandler) Export(c *gin.Context) {
	claims := currentUser(c)
	if claims == nil {
		return
	}
	format := dto.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(dto.ExportFormatCSV))))
	file, err := h.service.ExportAccepted(c.Request.Context(), claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
