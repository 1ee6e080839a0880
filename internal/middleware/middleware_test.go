package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
	"github.com/noah-isme/alumni-mentorship-api/pkg/middleware/requestid"
)

type validatorStub struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (v *validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	v.token = token
	return v.claims, v.err
}

type observerStub struct {
	method string
	path   string
	status int
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.method, o.path, o.status = method, path, status
}

type auditStub struct {
	logs []*models.AuditLog
	err  error
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return a.err
}

func serve(r *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWT(&validatorStub{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", "Bearer ").Code)
}

func TestJWTAttachesClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := &validatorStub{claims: &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}}
	var seen *models.JWTClaims
	r := gin.New()
	r.GET("/me", JWT(v), func(c *gin.Context) {
		seen = CurrentUser(c)
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/me", "bearer token-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "token-1", v.token)
	require.NotNil(t, seen)
	assert.Equal(t, "student-1", seen.UserID)
}

func TestJWTPropagatesValidatorError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := &validatorStub{err: appErrors.Clone(appErrors.ErrUnauthorized, "token expired")}
	r := gin.New()
	r.GET("/me", JWT(v), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/me", "Bearer stale")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	withRole := func(role models.UserRole) gin.HandlerFunc {
		return func(c *gin.Context) {
			if role != "" {
				c.Set(ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: role})
			}
		}
	}
	cases := []struct {
		name string
		role models.UserRole
		want int
	}{
		{"alumni allowed", models.RoleAlumni, http.StatusOK},
		{"admin not listed", models.RoleAdmin, http.StatusForbidden},
		{"student forbidden", models.RoleStudent, http.StatusForbidden},
		{"anonymous", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/incoming", withRole(tc.role), RequireRoles(models.RoleAlumni), func(c *gin.Context) { c.Status(http.StatusOK) })
			assert.Equal(t, tc.want, serve(r, http.MethodGet, "/incoming", "").Code)
		})
	}
}

func TestRequireRolesKeepsAdminOffStudentSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reached := false
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	})
	r.POST("/mentorship/request/:alumniId", RequireRoles(models.RoleStudent), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusCreated)
	})

	w := serve(r, http.MethodPost, "/mentorship/request/alumni-1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, reached)

	r2 := gin.New()
	r2.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	})
	r2.GET("/alumni/:id/availability", RequireRoles(models.RoleStudent, models.RoleAlumni, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, serve(r2, http.MethodGet, "/alumni/a-1/availability", "").Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &observerStub{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.POST("/mentorship/:requestId/accept", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(r, http.MethodPost, "/mentorship/abc/accept", "")
	assert.Equal(t, "/mentorship/:requestId/accept", obs.path)
	assert.Equal(t, http.StatusNoContent, obs.status)

	serve(r, http.MethodGet, "/nowhere", "")
	assert.Equal(t, "unmatched", obs.path)
	assert.Equal(t, http.StatusNotFound, obs.status)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.Middleware(), WithResponseMeta())
	r.GET("/summary", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})

	w := serve(r, http.MethodGet, "/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, w.Header().Get("X-Request-ID"), meta["request_id"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestAuditSkipsFailedRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &auditStub{err: errors.New("insert failed")}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "alumni-1", Role: models.RoleAlumni})
	})
	r.PUT("/ok", Audit(repo, nil, models.AuditActionAvailabilityUpdate, "alumni_profiles"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PUT("/bad", Audit(repo, nil, models.AuditActionAvailabilityUpdate, "alumni_profiles"), func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPut, "/ok", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPut, "/bad", "").Code)

	require.Len(t, repo.logs, 1)
	log := repo.logs[0]
	assert.Equal(t, models.AuditActionAvailabilityUpdate, log.Action)
	require.NotNil(t, log.UserID)
	assert.Equal(t, "alumni-1", *log.UserID)
	assert.Contains(t, string(log.NewValues), `"status":200`)
}
