package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

const notificationColumns = `id, user_id, type, message, reference_id, is_read, read_at, created_at`

// NotificationRepository manages the notifications mailbox table.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateWithTx inserts a notification inside the caller's transaction.
func (r *NotificationRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (` + notificationColumns + `)
VALUES (:id, :user_id, :type, :message, :reference_id, :is_read, :read_at, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// List returns a page of the user's notifications, newest first, along with the total count.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	where := `WHERE user_id = $1`
	if filter.UnreadOnly {
		where += ` AND is_read = FALSE`
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications `+where, filter.UserID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications ` + where + ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	items := make([]models.Notification, 0)
	if err := r.db.SelectContext(ctx, &items, query, filter.UserID, filter.Limit, filter.Offset); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return items, total, nil
}

// MarkRead flags the user's notification as read. Returns sql.ErrNoRows when it does not belong to the user.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string, at time.Time) (*models.Notification, error) {
	const query = `UPDATE notifications
SET is_read = TRUE, read_at = COALESCE(read_at, $3)
WHERE id = $1 AND user_id = $2
RETURNING ` + notificationColumns
	var n models.Notification
	if err := r.db.GetContext(ctx, &n, query, id, userID, at); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return &n, nil
}

// CountUnread returns the user's unread badge count.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
