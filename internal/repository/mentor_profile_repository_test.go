package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

func TestMentorProfileRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (user_id) DO UPDATE SET`)).
		WithArgs("alumni-1", true, 2, pq.StringArray{}, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	availability := &models.MentorAvailability{AlumniID: "alumni-1", AcceptsMentorship: true, MaxMentees: 2}
	require.NoError(t, repo.UpsertAvailability(context.Background(), availability))
	assert.False(t, availability.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMentorProfileRepositorySuggest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMentorProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`ap.mentorship_topics && $1`)).
		WithArgs(pq.Array([]string{"golang"}), 10).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "full_name", "max_mentees", "mentorship_topics"}).
			AddRow("alumni-1", "Dewi", 2, "{golang,cloud}"))

	items, err := repo.Suggest(context.Background(), []string{"golang"}, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Dewi", items[0].FullName)
	assert.Contains(t, []string(items[0].Topics), "cloud")
}
