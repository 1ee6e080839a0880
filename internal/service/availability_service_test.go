package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
)

const fixtureAlumniID = "0b6a2c4e-1d3f-4a5b-9c7d-8e9f0a1b2c3d"

type availabilityRepoStub struct {
	profiles     map[string]models.MentorAvailability
	gets         int
	upserted     *models.MentorAvailability
	suggestWith  []string
	suggestLimit int
	err          error
}

func (s *availabilityRepoStub) GetAvailability(ctx context.Context, alumniID string) (*models.MentorAvailability, error) {
	s.gets++
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[alumniID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (s *availabilityRepoStub) UpsertAvailability(ctx context.Context, availability *models.MentorAvailability) error {
	if s.err != nil {
		return s.err
	}
	s.upserted = availability
	s.profiles[availability.AlumniID] = *availability
	return nil
}

func (s *availabilityRepoStub) Suggest(ctx context.Context, topics []string, limit int) ([]dto.MentorSuggestion, error) {
	s.suggestWith = topics
	s.suggestLimit = limit
	return []dto.MentorSuggestion{{AlumniID: fixtureAlumniID, FullName: "Dewi"}}, nil
}

type userReaderStub struct {
	users map[string]*models.User
}

func (u *userReaderStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := u.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func newAvailabilityFixture() (*AvailabilityService, *availabilityRepoStub, *memCacheRepository) {
	repo := &availabilityRepoStub{profiles: map[string]models.MentorAvailability{
		fixtureAlumniID: {AlumniID: fixtureAlumniID, AcceptsMentorship: true, MaxMentees: 3},
	}}
	users := &userReaderStub{users: map[string]*models.User{
		fixtureAlumniID:  {ID: fixtureAlumniID, Role: models.RoleAlumni},
		"student-1": {ID: "student-1", Role: models.RoleStudent},
	}}
	cacheRepo := newMemCacheRepository()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	return NewAvailabilityService(repo, users, cache, nil, nil, time.Minute), repo, cacheRepo
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestAvailabilityGetUsesCache(t *testing.T) {
	svc, repo, _ := newAvailabilityFixture()

	first, hit, err := svc.Get(context.Background(), fixtureAlumniID)
	require.NoError(t, err)
	assert.False(t, hit)
	second, hit, err := svc.Get(context.Background(), fixtureAlumniID)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, first.MaxMentees, second.MaxMentees)
	assert.Equal(t, 1, repo.gets)
}

func TestAvailabilityGetMissing(t *testing.T) {
	svc, _, _ := newAvailabilityFixture()

	_, _, err := svc.Get(context.Background(), "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAvailabilityGetMalformedID(t *testing.T) {
	svc, repo, _ := newAvailabilityFixture()

	_, _, err := svc.Get(context.Background(), "alumni-1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Zero(t, repo.gets)
}

func TestAvailabilityGetRepositoryFailure(t *testing.T) {
	svc, repo, _ := newAvailabilityFixture()
	repo.err = errors.New("db down")

	_, _, err := svc.Get(context.Background(), fixtureAlumniID)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestAvailabilityUpdate(t *testing.T) {
	svc, repo, cacheRepo := newAvailabilityFixture()
	_, _, err := svc.Get(context.Background(), fixtureAlumniID)
	require.NoError(t, err)
	require.Contains(t, cacheRepo.data, availabilityCacheKey(fixtureAlumniID))

	updated, err := svc.Update(context.Background(), fixtureAlumniID, dto.UpdateAvailabilityRequest{
		AcceptsMentorship: boolPtr(false),
		MaxMentees:        intPtr(5),
		Topics:            []string{" Golang ", "golang", "Career"},
	})
	require.NoError(t, err)
	assert.False(t, updated.AcceptsMentorship)
	assert.Equal(t, 5, repo.upserted.MaxMentees)
	assert.Equal(t, []string{"golang", "career"}, []string(repo.upserted.Topics))
	assert.NotContains(t, cacheRepo.data, availabilityCacheKey(fixtureAlumniID))
}

func TestAvailabilityUpdateValidation(t *testing.T) {
	svc, _, _ := newAvailabilityFixture()

	_, err := svc.Update(context.Background(), fixtureAlumniID, dto.UpdateAvailabilityRequest{AcceptsMentorship: boolPtr(true), MaxMentees: intPtr(51)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Update(context.Background(), fixtureAlumniID, dto.UpdateAvailabilityRequest{MaxMentees: intPtr(2)})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAvailabilityUpdateRequiresAlumni(t *testing.T) {
	svc, _, _ := newAvailabilityFixture()
	req := dto.UpdateAvailabilityRequest{AcceptsMentorship: boolPtr(true), MaxMentees: intPtr(1)}

	_, err := svc.Update(context.Background(), "student-1", req)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Update(context.Background(), "ghost", req)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAvailabilitySuggest(t *testing.T) {
	svc, repo, _ := newAvailabilityFixture()

	items, err := svc.Suggest(context.Background(), []string{"Cloud", "", "cloud"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, []string{"cloud"}, repo.suggestWith)
	assert.Equal(t, suggestionLimit, repo.suggestLimit)

	_, err = svc.Suggest(context.Background(), []string{" "})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
