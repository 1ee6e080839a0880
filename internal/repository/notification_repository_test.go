package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

var notificationRowColumns = []string{"id", "user_id", "type", "message", "reference_id", "is_read", "read_at", "created_at"}

func TestNotificationRepositoryCreateWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notifications`)).WillReturnResult(sqlmock.NewResult(1, 1))

	ref := "req-1"
	n := &models.Notification{UserID: "student-1", Kind: models.NotificationMentorshipQueued, Message: "queued", ReferenceID: &ref}
	require.NoError(t, repo.CreateWithTx(context.Background(), tx, n))
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestNotificationRepositoryListUnread(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`)).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC LIMIT $2 OFFSET $3`)).
		WithArgs("student-1", 2, 0).
		WillReturnRows(sqlmock.NewRows(notificationRowColumns).
			AddRow("n-1", "student-1", "MENTORSHIP_ACCEPTED", "accepted", "req-1", false, nil, now).
			AddRow("n-2", "student-1", "MENTORSHIP_QUEUED", "queued", nil, false, nil, now))

	items, total, err := repo.List(context.Background(), models.NotificationFilter{UserID: "student-1", UnreadOnly: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].ReferenceID)
	assert.Equal(t, "req-1", *items[0].ReferenceID)
	assert.Nil(t, items[1].ReferenceID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkReadForeign(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND user_id = $2`)).
		WithArgs("n-1", "someone-else", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(notificationRowColumns))

	_, err := repo.MarkRead(context.Background(), "someone-else", "n-1", time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNotificationRepositoryCountUnread(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`)).
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.CountUnread(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
