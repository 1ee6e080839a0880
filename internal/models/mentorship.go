package models

import (
	"time"

	"github.com/lib/pq"
)

// MentorshipStatus captures the lifecycle of a mentorship request.
type MentorshipStatus string

const (
	MentorshipStatusPending  MentorshipStatus = "PENDING"
	MentorshipStatusQueued   MentorshipStatus = "QUEUED"
	MentorshipStatusAccepted MentorshipStatus = "ACCEPTED"
	MentorshipStatusRejected MentorshipStatus = "REJECTED"
)

// Terminal reports whether no further transition may leave the status.
func (s MentorshipStatus) Terminal() bool {
	return s == MentorshipStatusAccepted || s == MentorshipStatusRejected
}

// MentorshipRequest is one student's request to one alumni mentor.
// QueuePosition is set iff Status is QUEUED.
type MentorshipRequest struct {
	ID            string           `db:"id" json:"id"`
	StudentID     string           `db:"student_id" json:"student_id"`
	AlumniID      string           `db:"alumni_id" json:"alumni_id"`
	Status        MentorshipStatus `db:"status" json:"status"`
	QueuePosition *int             `db:"queue_position" json:"queue_position"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// MentorAvailability is the mentorship slice of an alumni profile.
type MentorAvailability struct {
	AlumniID          string         `db:"user_id" json:"alumni_id"`
	AcceptsMentorship bool           `db:"available_for_mentorship" json:"accepts_mentorship"`
	MaxMentees        int            `db:"max_mentees" json:"max_mentees"`
	Topics            pq.StringArray `db:"mentorship_topics" json:"topics"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// Open reports whether the mentor can take requests at all.
func (a *MentorAvailability) Open() bool {
	return a != nil && a.AcceptsMentorship && a.MaxMentees > 0
}

// MentorshipSummary aggregates a mentor's request counts.
type MentorshipSummary struct {
	AlumniID   string `db:"alumni_id" json:"alumni_id"`
	Pending    int    `db:"pending" json:"pending"`
	Queued     int    `db:"queued" json:"queued"`
	Accepted   int    `db:"accepted" json:"accepted"`
	Rejected   int    `db:"rejected" json:"rejected"`
	MaxMentees int    `db:"max_mentees" json:"max_mentees"`
	OpenSlots  int    `db:"-" json:"open_slots"`
}
