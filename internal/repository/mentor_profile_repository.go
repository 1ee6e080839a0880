package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

// MentorProfileRepository reads and writes the mentorship settings of alumni profiles.
type MentorProfileRepository struct {
	db *sqlx.DB
}

// NewMentorProfileRepository constructs the repository.
func NewMentorProfileRepository(db *sqlx.DB) *MentorProfileRepository {
	return &MentorProfileRepository{db: db}
}

// GetAvailability returns the mentor's current settings or sql.ErrNoRows.
func (r *MentorProfileRepository) GetAvailability(ctx context.Context, alumniID string) (*models.MentorAvailability, error) {
	const query = `SELECT user_id, available_for_mentorship, max_mentees, mentorship_topics, updated_at
FROM alumni_profiles WHERE user_id = $1`
	var availability models.MentorAvailability
	if err := r.db.GetContext(ctx, &availability, query, alumniID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get mentor availability: %w", err)
	}
	return &availability, nil
}

// UpsertAvailability creates or replaces the mentor's settings. The profile row lock taken here
// is the same one mentorship transitions take, so updates never interleave with an admission.
func (r *MentorProfileRepository) UpsertAvailability(ctx context.Context, availability *models.MentorAvailability) error {
	availability.UpdatedAt = time.Now().UTC()
	if availability.Topics == nil {
		availability.Topics = pq.StringArray{}
	}
	const query = `INSERT INTO alumni_profiles (user_id, available_for_mentorship, max_mentees, mentorship_topics, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE SET
	available_for_mentorship = EXCLUDED.available_for_mentorship,
	max_mentees = EXCLUDED.max_mentees,
	mentorship_topics = EXCLUDED.mentorship_topics,
	updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, availability.AlumniID, availability.AcceptsMentorship, availability.MaxMentees, availability.Topics, availability.UpdatedAt); err != nil {
		return fmt.Errorf("upsert mentor availability: %w", err)
	}
	return nil
}

// Suggest lists open mentors sharing at least one topic, alphabetically.
func (r *MentorProfileRepository) Suggest(ctx context.Context, topics []string, limit int) ([]dto.MentorSuggestion, error) {
	const query = `SELECT ap.user_id, u.full_name, ap.max_mentees, ap.mentorship_topics
FROM alumni_profiles ap
JOIN users u ON u.id = ap.user_id
WHERE ap.available_for_mentorship = TRUE
	AND ap.max_mentees > 0
	AND ap.mentorship_topics && $1
ORDER BY u.full_name ASC
LIMIT $2`
	items := make([]dto.MentorSuggestion, 0)
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(topics), limit); err != nil {
		return nil, fmt.Errorf("suggest mentors: %w", err)
	}
	return items, nil
}
