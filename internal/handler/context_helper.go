package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-mentorship-api/internal/middleware"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
	"github.com/noah-isme/alumni-mentorship-api/pkg/response"
)

// currentUser returns the caller's claims or writes a 401 and returns nil.
func currentUser(c *gin.Context) *models.JWTClaims {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil
	}
	return claims
}
