package dto

import (
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

// IncomingMentorshipItem is a PENDING request as seen by the mentor.
type IncomingMentorshipItem struct {
	ID           string                  `db:"id" json:"id"`
	Status       models.MentorshipStatus `db:"status" json:"status"`
	CreatedAt    time.Time               `db:"created_at" json:"created_at"`
	StudentID    string                  `db:"student_id" json:"student_id"`
	StudentName  string                  `db:"student_name" json:"student_name"`
	StudentEmail string                  `db:"student_email" json:"student_email"`
}

// StudentMentorshipItem is one of the caller's own requests.
type StudentMentorshipItem struct {
	ID            string                  `db:"id" json:"id"`
	Status        models.MentorshipStatus `db:"status" json:"status"`
	QueuePosition *int                    `db:"queue_position" json:"queue_position"`
	CreatedAt     time.Time               `db:"created_at" json:"created_at"`
	AlumniID      string                  `db:"alumni_id" json:"alumni_id"`
	AlumniName    string                  `db:"alumni_name" json:"alumni_name"`
	AlumniEmail   string                  `db:"alumni_email" json:"alumni_email"`
}

// AcceptedMentorshipItem is an active mentee of the caller.
type AcceptedMentorshipItem struct {
	ID           string    `db:"id" json:"id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	AcceptedAt   time.Time `db:"updated_at" json:"accepted_at"`
	StudentID    string    `db:"student_id" json:"student_id"`
	StudentName  string    `db:"student_name" json:"student_name"`
	StudentEmail string    `db:"student_email" json:"student_email"`
}

// QueuedMentorshipItem is a waiting request in FIFO order.
type QueuedMentorshipItem struct {
	ID            string    `db:"id" json:"id"`
	QueuePosition int       `db:"queue_position" json:"queue_position"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	StudentID     string    `db:"student_id" json:"student_id"`
	StudentName   string    `db:"student_name" json:"student_name"`
	StudentEmail  string    `db:"student_email" json:"student_email"`
}

// UpdateAvailabilityRequest is the alumni's mentorship settings payload.
type UpdateAvailabilityRequest struct {
	AcceptsMentorship *bool    `json:"accepts_mentorship" validate:"required"`
	MaxMentees        *int     `json:"max_mentees" validate:"required,gte=0,lte=50"`
	Topics            []string `json:"topics" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// MentorSuggestion is an available mentor matched on topics.
type MentorSuggestion struct {
	AlumniID   string         `db:"user_id" json:"alumni_id"`
	FullName   string         `db:"full_name" json:"full_name"`
	MaxMentees int            `db:"max_mentees" json:"max_mentees"`
	Topics     pq.StringArray `db:"mentorship_topics" json:"topics"`
}

// ExportFormat selects the roster renderer.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered roster ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
