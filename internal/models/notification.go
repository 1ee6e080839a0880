package models

import "time"

// NotificationKind names the event a notification reports.
type NotificationKind string

const (
	NotificationMentorshipPending  NotificationKind = "MENTORSHIP_PENDING"
	NotificationMentorshipQueued   NotificationKind = "MENTORSHIP_QUEUED"
	NotificationMentorshipAccepted NotificationKind = "MENTORSHIP_ACCEPTED"
	NotificationMentorshipRejected NotificationKind = "MENTORSHIP_REJECTED"
)

// Notification is a durable mailbox entry for one user.
type Notification struct {
	ID          string           `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"user_id"`
	Kind        NotificationKind `db:"type" json:"type"`
	Message     string           `db:"message" json:"message"`
	ReferenceID *string          `db:"reference_id" json:"reference_id,omitempty"`
	IsRead      bool             `db:"is_read" json:"is_read"`
	ReadAt      *time.Time       `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter constrains mailbox listing.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}
