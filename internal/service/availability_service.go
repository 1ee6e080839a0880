package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
)

const suggestionLimit = 10

type availabilityRepository interface {
	GetAvailability(ctx context.Context, alumniID string) (*models.MentorAvailability, error)
	UpsertAvailability(ctx context.Context, availability *models.MentorAvailability) error
	Suggest(ctx context.Context, topics []string, limit int) ([]dto.MentorSuggestion, error)
}

type availabilityUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AvailabilityService exposes and edits the mentorship settings of alumni.
type AvailabilityService struct {
	repo      availabilityRepository
	users     availabilityUserReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(repo availabilityRepository, users availabilityUserReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, users: users, cache: cache, validator: validate, logger: logger, ttl: ttl}
}

// Get returns whether the mentor accepts requests and their capacity. The bool reports a cache hit.
func (s *AvailabilityService) Get(ctx context.Context, alumniID string) (*models.MentorAvailability, bool, error) {
	if _, err := uuid.Parse(alumniID); err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "mentor profile not found")
	}
	key := availabilityCacheKey(alumniID)
	var cached models.MentorAvailability
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	availability, err := s.repo.GetAvailability(ctx, alumniID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "mentor profile not found")
		}
		return nil, false, appErrors.Internal(err, "failed to load mentor availability")
	}
	_ = s.cache.Set(ctx, key, availability, s.ttl)
	return availability, false, nil
}

// Update replaces the caller's mentorship settings. Lowering capacity leaves existing requests untouched;
// it only affects later admissions.
func (s *AvailabilityService) Update(ctx context.Context, alumniID string, req dto.UpdateAvailabilityRequest) (*models.MentorAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mentorship settings")
	}

	user, err := s.users.FindByID(ctx, alumniID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	if user.Role != models.RoleAlumni {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only alumni can offer mentorship")
	}

	availability := &models.MentorAvailability{
		AlumniID:          alumniID,
		AcceptsMentorship: *req.AcceptsMentorship,
		MaxMentees:        *req.MaxMentees,
		Topics:            normalizeTopics(req.Topics),
	}
	if err := s.repo.UpsertAvailability(ctx, availability); err != nil {
		return nil, appErrors.Internal(err, "failed to save mentorship settings")
	}

	_ = s.cache.Invalidate(ctx, availabilityCacheKey(alumniID), summaryCacheKey(alumniID))
	s.logger.Info("mentor availability updated",
		zap.String("alumni_id", alumniID),
		zap.Bool("accepts_mentorship", availability.AcceptsMentorship),
		zap.Int("max_mentees", availability.MaxMentees))
	return availability, nil
}

// Suggest lists up to ten open mentors sharing at least one topic.
func (s *AvailabilityService) Suggest(ctx context.Context, topics []string) ([]dto.MentorSuggestion, error) {
	normalized := normalizeTopics(topics)
	if len(normalized) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one topic is required")
	}
	items, err := s.repo.Suggest(ctx, normalized, suggestionLimit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to suggest mentors")
	}
	return items, nil
}

// normalizeTopics lowercases, trims and de-duplicates topics, dropping blanks.
func normalizeTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	seen := make(map[string]struct{}, len(topics))
	for _, topic := range topics {
		t := strings.ToLower(strings.TrimSpace(topic))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
