package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

// ErrDuplicateMentorship reports a violation of the (student_id, alumni_id) unique key.
var ErrDuplicateMentorship = errors.New("mentorship request already exists for pair")

const (
	uniqueViolation     = "23505"
	mentorshipPairIndex = "mentorship_requests_pair_key"
	mentorshipColumns   = `id, student_id, alumni_id, status, queue_position, created_at, updated_at`
)

// MentorshipRepository persists mentorship requests. Methods taking a *sqlx.Tx are the engine's
// transactional primitives; the rest are plain reads.
type MentorshipRepository struct {
	db *sqlx.DB
}

// NewMentorshipRepository constructs the repository.
func NewMentorshipRepository(db *sqlx.DB) *MentorshipRepository {
	return &MentorshipRepository{db: db}
}

// LockMentor reads the mentor's availability and holds its row lock until the transaction ends.
// Every engine operation for a mentor serialises on this lock. Returns sql.ErrNoRows when no profile exists.
func (r *MentorshipRepository) LockMentor(ctx context.Context, tx *sqlx.Tx, alumniID string) (*models.MentorAvailability, error) {
	const query = `SELECT user_id, available_for_mentorship, max_mentees, mentorship_topics, updated_at
FROM alumni_profiles WHERE user_id = $1 FOR UPDATE`
	var availability models.MentorAvailability
	if err := tx.GetContext(ctx, &availability, query, alumniID); err != nil {
		return nil, err
	}
	return &availability, nil
}

// ExistsForPair reports whether the student has ever requested this mentor, in any status.
func (r *MentorshipRepository) ExistsForPair(ctx context.Context, tx *sqlx.Tx, studentID, alumniID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM mentorship_requests WHERE student_id = $1 AND alumni_id = $2)`
	var exists bool
	if err := tx.GetContext(ctx, &exists, query, studentID, alumniID); err != nil {
		return false, fmt.Errorf("check mentorship pair: %w", err)
	}
	return exists, nil
}

// CountByStatus counts the mentor's requests in any of the given statuses.
func (r *MentorshipRepository) CountByStatus(ctx context.Context, tx *sqlx.Tx, alumniID string, statuses ...models.MentorshipStatus) (int, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	const query = `SELECT COUNT(*) FROM mentorship_requests WHERE alumni_id = $1 AND status = ANY($2)`
	var count int
	if err := tx.GetContext(ctx, &count, query, alumniID, pq.Array(values)); err != nil {
		return 0, fmt.Errorf("count mentorship requests: %w", err)
	}
	return count, nil
}

// NextQueuePosition returns max(queue_position)+1 over the mentor's queued requests, or 1.
func (r *MentorshipRepository) NextQueuePosition(ctx context.Context, tx *sqlx.Tx, alumniID string) (int, error) {
	const query = `SELECT COALESCE(MAX(queue_position), 0) + 1 FROM mentorship_requests WHERE alumni_id = $1 AND status = 'QUEUED'`
	var position int
	if err := tx.GetContext(ctx, &position, query, alumniID); err != nil {
		return 0, fmt.Errorf("next queue position: %w", err)
	}
	return position, nil
}

// Create inserts a new request, filling ID and timestamps when absent.
func (r *MentorshipRepository) Create(ctx context.Context, tx *sqlx.Tx, req *models.MentorshipRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = req.CreatedAt

	const query = `INSERT INTO mentorship_requests (` + mentorshipColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.ExecContext(ctx, query, req.ID, req.StudentID, req.AlumniID, req.Status, req.QueuePosition, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == mentorshipPairIndex {
			return ErrDuplicateMentorship
		}
		return fmt.Errorf("insert mentorship request: %w", err)
	}
	return nil
}

// ResolvePending moves a PENDING request owned by alumniID to a terminal status.
// Returns sql.ErrNoRows when the request is missing, owned by someone else, or not PENDING.
func (r *MentorshipRepository) ResolvePending(ctx context.Context, tx *sqlx.Tx, requestID, alumniID string, to models.MentorshipStatus) (*models.MentorshipRequest, error) {
	if !to.Terminal() {
		return nil, fmt.Errorf("resolve pending request: %q is not a terminal status", to)
	}
	const query = `UPDATE mentorship_requests
SET status = $3, queue_position = NULL, updated_at = $4
WHERE id = $1 AND alumni_id = $2 AND status = 'PENDING'
RETURNING ` + mentorshipColumns
	var req models.MentorshipRequest
	if err := tx.GetContext(ctx, &req, query, requestID, alumniID, to, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &req, nil
}

// HeadOfQueue locks the mentor's QUEUED request with the lowest position. Returns sql.ErrNoRows on an empty queue.
func (r *MentorshipRepository) HeadOfQueue(ctx context.Context, tx *sqlx.Tx, alumniID string) (*models.MentorshipRequest, error) {
	const query = `SELECT ` + mentorshipColumns + `
FROM mentorship_requests
WHERE alumni_id = $1 AND status = 'QUEUED'
ORDER BY queue_position ASC, created_at ASC
LIMIT 1
FOR UPDATE`
	var req models.MentorshipRequest
	if err := tx.GetContext(ctx, &req, query, alumniID); err != nil {
		return nil, err
	}
	return &req, nil
}

// Promote moves a QUEUED request to PENDING and clears its position.
func (r *MentorshipRepository) Promote(ctx context.Context, tx *sqlx.Tx, requestID string) error {
	const query = `UPDATE mentorship_requests SET status = 'PENDING', queue_position = NULL, updated_at = $2 WHERE id = $1 AND status = 'QUEUED'`
	res, err := tx.ExecContext(ctx, query, requestID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("promote mentorship request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return fmt.Errorf("promote mentorship request %s: %d rows affected", requestID, n)
	}
	return nil
}

// CompactQueue shifts every queued request behind the vacated position forward by one.
func (r *MentorshipRepository) CompactQueue(ctx context.Context, tx *sqlx.Tx, alumniID string, vacated int) (int64, error) {
	const query = `UPDATE mentorship_requests
SET queue_position = queue_position - 1, updated_at = $3
WHERE alumni_id = $1 AND status = 'QUEUED' AND queue_position > $2`
	res, err := tx.ExecContext(ctx, query, alumniID, vacated, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("compact mentorship queue: %w", err)
	}
	shifted, _ := res.RowsAffected()
	return shifted, nil
}

// ListIncoming returns the mentor's PENDING requests, newest first.
func (r *MentorshipRepository) ListIncoming(ctx context.Context, alumniID string) ([]dto.IncomingMentorshipItem, error) {
	const query = `SELECT m.id, m.status, m.created_at, m.student_id,
	u.full_name AS student_name, u.email AS student_email
FROM mentorship_requests m
JOIN users u ON u.id = m.student_id
WHERE m.alumni_id = $1 AND m.status = 'PENDING'
ORDER BY m.created_at DESC`
	items := make([]dto.IncomingMentorshipItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, alumniID); err != nil {
		return nil, fmt.Errorf("list incoming mentorships: %w", err)
	}
	return items, nil
}

// ListByStudent returns all of a student's requests regardless of status, newest first.
func (r *MentorshipRepository) ListByStudent(ctx context.Context, studentID string) ([]dto.StudentMentorshipItem, error) {
	const query = `SELECT m.id, m.status, m.queue_position, m.created_at, m.alumni_id,
	u.full_name AS alumni_name, u.email AS alumni_email
FROM mentorship_requests m
JOIN users u ON u.id = m.alumni_id
WHERE m.student_id = $1
ORDER BY m.created_at DESC`
	items := make([]dto.StudentMentorshipItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list student mentorships: %w", err)
	}
	return items, nil
}

// ListAccepted returns the mentor's ACCEPTED requests, newest first.
func (r *MentorshipRepository) ListAccepted(ctx context.Context, alumniID string) ([]dto.AcceptedMentorshipItem, error) {
	const query = `SELECT m.id, m.created_at, m.updated_at, m.student_id,
	u.full_name AS student_name, u.email AS student_email
FROM mentorship_requests m
JOIN users u ON u.id = m.student_id
WHERE m.alumni_id = $1 AND m.status = 'ACCEPTED'
ORDER BY m.created_at DESC`
	items := make([]dto.AcceptedMentorshipItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, alumniID); err != nil {
		return nil, fmt.Errorf("list accepted mentorships: %w", err)
	}
	return items, nil
}

// ListQueued returns the mentor's waiting list in promotion order.
func (r *MentorshipRepository) ListQueued(ctx context.Context, alumniID string) ([]dto.QueuedMentorshipItem, error) {
	const query = `SELECT m.id, m.queue_position, m.created_at, m.student_id,
	u.full_name AS student_name, u.email AS student_email
FROM mentorship_requests m
JOIN users u ON u.id = m.student_id
WHERE m.alumni_id = $1 AND m.status = 'QUEUED'
ORDER BY m.queue_position ASC`
	items := make([]dto.QueuedMentorshipItem, 0)
	if err := r.db.SelectContext(ctx, &items, query, alumniID); err != nil {
		return nil, fmt.Errorf("list queued mentorships: %w", err)
	}
	return items, nil
}

// Summary aggregates the mentor's request counts. Returns sql.ErrNoRows when no profile exists.
func (r *MentorshipRepository) Summary(ctx context.Context, alumniID string) (*models.MentorshipSummary, error) {
	const query = `SELECT ap.user_id AS alumni_id,
	COUNT(m.id) FILTER (WHERE m.status = 'PENDING') AS pending,
	COUNT(m.id) FILTER (WHERE m.status = 'QUEUED') AS queued,
	COUNT(m.id) FILTER (WHERE m.status = 'ACCEPTED') AS accepted,
	COUNT(m.id) FILTER (WHERE m.status = 'REJECTED') AS rejected,
	ap.max_mentees
FROM alumni_profiles ap
LEFT JOIN mentorship_requests m ON m.alumni_id = ap.user_id
WHERE ap.user_id = $1
GROUP BY ap.user_id, ap.max_mentees`
	var summary models.MentorshipSummary
	if err := r.db.GetContext(ctx, &summary, query, alumniID); err != nil {
		return nil, err
	}
	return &summary, nil
}
