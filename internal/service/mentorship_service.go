package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-mentorship-api/internal/dto"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/internal/repository"
	appErrors "github.com/noah-isme/alumni-mentorship-api/pkg/errors"
	"github.com/noah-isme/alumni-mentorship-api/pkg/export"
)

const (
	msgRequestSent     = "Your mentorship request has been sent"
	msgRequestQueued   = "Mentor is full, you are added to the queue"
	msgRequestAccepted = "Your mentorship request has been accepted"
	msgRequestRejected = "Your mentorship request has been rejected"
	msgRequestPromoted = "A spot opened up, your request is now pending"

	mentorshipResource = "mentorship_request"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type mentorshipRepository interface {
	LockMentor(ctx context.Context, tx *sqlx.Tx, alumniID string) (*models.MentorAvailability, error)
	ExistsForPair(ctx context.Context, tx *sqlx.Tx, studentID, alumniID string) (bool, error)
	CountByStatus(ctx context.Context, tx *sqlx.Tx, alumniID string, statuses ...models.MentorshipStatus) (int, error)
	NextQueuePosition(ctx context.Context, tx *sqlx.Tx, alumniID string) (int, error)
	Create(ctx context.Context, tx *sqlx.Tx, req *models.MentorshipRequest) error
	ResolvePending(ctx context.Context, tx *sqlx.Tx, requestID, alumniID string, to models.MentorshipStatus) (*models.MentorshipRequest, error)
	HeadOfQueue(ctx context.Context, tx *sqlx.Tx, alumniID string) (*models.MentorshipRequest, error)
	Promote(ctx context.Context, tx *sqlx.Tx, requestID string) error
	CompactQueue(ctx context.Context, tx *sqlx.Tx, alumniID string, vacated int) (int64, error)

	ListIncoming(ctx context.Context, alumniID string) ([]dto.IncomingMentorshipItem, error)
	ListByStudent(ctx context.Context, studentID string) ([]dto.StudentMentorshipItem, error)
	ListAccepted(ctx context.Context, alumniID string) ([]dto.AcceptedMentorshipItem, error)
	ListQueued(ctx context.Context, alumniID string) ([]dto.QueuedMentorshipItem, error)
	Summary(ctx context.Context, alumniID string) (*models.MentorshipSummary, error)
}

type notificationWriter interface {
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, n *models.Notification) error
}

type notificationPusher interface {
	Dispatch(notifications ...models.Notification)
}

type rosterRenderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset) ([]byte, error)
}

// MentorshipServiceConfig tunes the engine's read side.
type MentorshipServiceConfig struct {
	SummaryTTL time.Duration
}

// MentorshipService owns the per-mentor capacity and queue state machine.
//
// Admission counts ACCEPTED plus PENDING requests against maxMentees; when full the request joins the
// mentor's FIFO queue at max(position)+1. Accepting a PENDING request promotes at most one queued
// request to PENDING and shifts the rest of the queue forward so positions stay 1..n.
// Every transition locks the mentor's profile row first and writes its notifications in the same transaction.
type MentorshipService struct {
	repo          mentorshipRepository
	notifications notificationWriter
	audit         auditLogger
	pusher        notificationPusher
	tx            txProvider
	cache         *CacheService
	metrics       *MetricsService
	renderers     map[dto.ExportFormat]rosterRenderer
	logger        *zap.Logger
	summaryTTL    time.Duration
	now           func() time.Time
}

// NewMentorshipService wires engine dependencies.
func NewMentorshipService(
	repo mentorshipRepository,
	notifications notificationWriter,
	audit auditLogger,
	pusher notificationPusher,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg MentorshipServiceConfig,
) *MentorshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorshipService{
		repo:          repo,
		notifications: notifications,
		audit:         audit,
		pusher:        pusher,
		tx:            tx,
		cache:         cache,
		metrics:       metrics,
		renderers: map[dto.ExportFormat]rosterRenderer{
			dto.ExportFormatCSV: export.NewCSVExporter(),
			dto.ExportFormatPDF: export.NewPDFExporter(),
		},
		logger:     logger,
		summaryTTL: cfg.SummaryTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit creates a student's request as PENDING when the mentor has room, otherwise QUEUED.
func (s *MentorshipService) Submit(ctx context.Context, studentID, alumniID string) (*models.MentorshipRequest, error) {
	if studentID == alumniID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot request mentorship from yourself")
	}
	if _, err := uuid.Parse(alumniID); err != nil {
		return nil, appErrors.ErrMentorUnavailable
	}

	var (
		req    *models.MentorshipRequest
		outbox []models.Notification
	)
	err := s.inTx(ctx, "submit", func(tx *sqlx.Tx) error {
		availability, err := s.lockMentor(ctx, tx, alumniID, appErrors.ErrMentorUnavailable)
		if err != nil {
			return err
		}
		if !availability.Open() {
			return appErrors.ErrMentorUnavailable
		}

		exists, err := s.repo.ExistsForPair(ctx, tx, studentID, alumniID)
		if err != nil {
			return appErrors.Internal(err, "failed to check existing request")
		}
		if exists {
			return appErrors.ErrDuplicateRequest
		}

		occupied, err := s.repo.CountByStatus(ctx, tx, alumniID, models.MentorshipStatusAccepted, models.MentorshipStatusPending)
		if err != nil {
			return appErrors.Internal(err, "failed to count mentor capacity")
		}

		req = &models.MentorshipRequest{
			StudentID: studentID,
			AlumniID:  alumniID,
			Status:    models.MentorshipStatusPending,
			CreatedAt: s.now(),
		}
		kind, message := models.NotificationMentorshipPending, msgRequestSent
		if occupied >= availability.MaxMentees {
			position, err := s.repo.NextQueuePosition(ctx, tx, alumniID)
			if err != nil {
				return appErrors.Internal(err, "failed to compute queue position")
			}
			req.Status = models.MentorshipStatusQueued
			req.QueuePosition = &position
			kind, message = models.NotificationMentorshipQueued, msgRequestQueued
		}

		if err := s.repo.Create(ctx, tx, req); err != nil {
			if errors.Is(err, repository.ErrDuplicateMentorship) {
				return appErrors.ErrDuplicateRequest
			}
			return appErrors.Internal(err, "failed to create mentorship request")
		}

		n, err := s.notify(ctx, tx, studentID, kind, message, req.ID)
		if err != nil {
			return err
		}
		outbox = append(outbox, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition("submit", string(req.Status))
	s.afterCommit(ctx, alumniID, outbox)
	s.emitAudit(ctx, studentID, models.AuditActionMentorshipRequest, req, "")
	s.logger.Info("mentorship request submitted",
		zap.String("request_id", req.ID),
		zap.String("alumni_id", alumniID),
		zap.String("status", string(req.Status)))
	return req, nil
}

// Accept moves a PENDING request to ACCEPTED and promotes the head of the mentor's queue, if any.
func (s *MentorshipService) Accept(ctx context.Context, alumniID, requestID string) error {
	if _, err := uuid.Parse(requestID); err != nil {
		return appErrors.ErrRequestNotFound
	}

	var (
		accepted *models.MentorshipRequest
		promoted *models.MentorshipRequest
		outbox   []models.Notification
	)
	err := s.inTx(ctx, "accept", func(tx *sqlx.Tx) error {
		availability, err := s.lockMentor(ctx, tx, alumniID, appErrors.ErrRequestNotFound)
		if err != nil {
			return err
		}

		accepted, err = s.resolve(ctx, tx, alumniID, requestID, models.MentorshipStatusAccepted)
		if err != nil {
			return err
		}
		n, err := s.notify(ctx, tx, accepted.StudentID, models.NotificationMentorshipAccepted, msgRequestAccepted, accepted.ID)
		if err != nil {
			return err
		}
		outbox = append(outbox, n)

		promoted, err = s.promoteHead(ctx, tx, alumniID)
		if err != nil {
			return err
		}
		if promoted != nil {
			n, err := s.notify(ctx, tx, promoted.StudentID, models.NotificationMentorshipPending, msgRequestPromoted, promoted.ID)
			if err != nil {
				return err
			}
			outbox = append(outbox, n)
		}

		// Capacity is not re-checked on accept. Admission counts PENDING toward capacity and
		// promotion refills the freed slot, so accepting a promoted request can take ACCEPTED past max.
		acceptedCount, err := s.repo.CountByStatus(ctx, tx, alumniID, models.MentorshipStatusAccepted)
		if err != nil {
			return appErrors.Internal(err, "failed to count accepted mentees")
		}
		if acceptedCount > availability.MaxMentees {
			s.logger.Warn("mentor over capacity after accept",
				zap.String("alumni_id", alumniID),
				zap.Int("accepted", acceptedCount),
				zap.Int("max_mentees", availability.MaxMentees))
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordTransition("accept", string(accepted.Status))
	if promoted != nil {
		s.metrics.RecordTransition("promote", string(promoted.Status))
	}
	s.afterCommit(ctx, alumniID, outbox)
	s.emitAudit(ctx, alumniID, models.AuditActionMentorshipAccept, accepted, models.MentorshipStatusPending)
	return nil
}

// Reject moves a PENDING request to REJECTED. The queue is left untouched.
func (s *MentorshipService) Reject(ctx context.Context, alumniID, requestID string) error {
	if _, err := uuid.Parse(requestID); err != nil {
		return appErrors.ErrRequestNotFound
	}

	var (
		rejected *models.MentorshipRequest
		outbox   []models.Notification
	)
	err := s.inTx(ctx, "reject", func(tx *sqlx.Tx) error {
		if _, err := s.lockMentor(ctx, tx, alumniID, appErrors.ErrRequestNotFound); err != nil {
			return err
		}
		var err error
		rejected, err = s.resolve(ctx, tx, alumniID, requestID, models.MentorshipStatusRejected)
		if err != nil {
			return err
		}
		n, err := s.notify(ctx, tx, rejected.StudentID, models.NotificationMentorshipRejected, msgRequestRejected, rejected.ID)
		if err != nil {
			return err
		}
		outbox = append(outbox, n)
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordTransition("reject", string(rejected.Status))
	s.afterCommit(ctx, alumniID, outbox)
	s.emitAudit(ctx, alumniID, models.AuditActionMentorshipReject, rejected, models.MentorshipStatusPending)
	return nil
}

// ListIncoming returns the mentor's PENDING requests.
func (s *MentorshipService) ListIncoming(ctx context.Context, alumniID string) ([]dto.IncomingMentorshipItem, error) {
	items, err := s.repo.ListIncoming(ctx, alumniID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list incoming requests")
	}
	return items, nil
}

// ListMine returns every request the student has sent.
func (s *MentorshipService) ListMine(ctx context.Context, studentID string) ([]dto.StudentMentorshipItem, error) {
	items, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list mentorship requests")
	}
	return items, nil
}

// ListAccepted returns the mentor's active mentees.
func (s *MentorshipService) ListAccepted(ctx context.Context, alumniID string) ([]dto.AcceptedMentorshipItem, error) {
	items, err := s.repo.ListAccepted(ctx, alumniID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list accepted mentorships")
	}
	return items, nil
}

// ListQueue returns the mentor's waiting list in promotion order.
func (s *MentorshipService) ListQueue(ctx context.Context, alumniID string) ([]dto.QueuedMentorshipItem, error) {
	items, err := s.repo.ListQueued(ctx, alumniID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list mentorship queue")
	}
	return items, nil
}

// Summary reports per-status counts and remaining capacity for a mentor. The bool reports a cache hit.
func (s *MentorshipService) Summary(ctx context.Context, alumniID string) (*models.MentorshipSummary, bool, error) {
	key := summaryCacheKey(alumniID)
	var cached models.MentorshipSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	summary, err := s.repo.Summary(ctx, alumniID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "mentor profile not found")
		}
		return nil, false, appErrors.Internal(err, "failed to load mentorship summary")
	}
	summary.OpenSlots = max(0, summary.MaxMentees-summary.Accepted-summary.Pending)

	_ = s.cache.Set(ctx, key, summary, s.summaryTTL)
	return summary, false, nil
}

// ExportAccepted renders the mentor's accepted mentees as CSV or PDF.
func (s *MentorshipService) ExportAccepted(ctx context.Context, alumniID string, format dto.ExportFormat) (*dto.ExportFile, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	items, err := s.ListAccepted(ctx, alumniID)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   "Accepted mentees",
		Headers: []string{"Student", "Email", "Requested", "Accepted"},
		Rows:    make([][]string, 0, len(items)),
	}
	for _, item := range items {
		data.Rows = append(data.Rows, []string{
			item.StudentName,
			item.StudentEmail,
			item.CreatedAt.UTC().Format("2006-01-02"),
			item.AcceptedAt.UTC().Format("2006-01-02"),
		})
	}
	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render roster")
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("accepted-mentees-%s.%s", s.now().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *MentorshipService) inTx(ctx context.Context, operation string, fn func(tx *sqlx.Tx) error) (err error) {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	start := time.Now()
	defer func() { s.metrics.ObserveTx(operation, time.Since(start)) }()

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit mentorship transaction")
	}
	return nil
}

func (s *MentorshipService) lockMentor(ctx context.Context, tx *sqlx.Tx, alumniID string, missing *appErrors.Error) (*models.MentorAvailability, error) {
	availability, err := s.repo.LockMentor(ctx, tx, alumniID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, missing
		}
		return nil, appErrors.Internal(err, "failed to lock mentor")
	}
	return availability, nil
}

func (s *MentorshipService) resolve(ctx context.Context, tx *sqlx.Tx, alumniID, requestID string, to models.MentorshipStatus) (*models.MentorshipRequest, error) {
	req, err := s.repo.ResolvePending(ctx, tx, requestID, alumniID, to)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRequestNotFound
		}
		return nil, appErrors.Internal(err, "failed to update mentorship request")
	}
	return req, nil
}

// promoteHead moves the lowest-positioned queued request to PENDING and closes the gap it leaves.
// Returns nil when the queue is empty.
func (s *MentorshipService) promoteHead(ctx context.Context, tx *sqlx.Tx, alumniID string) (*models.MentorshipRequest, error) {
	head, err := s.repo.HeadOfQueue(ctx, tx, alumniID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Internal(err, "failed to read mentorship queue")
	}
	vacated := 1
	if head.QueuePosition != nil {
		vacated = *head.QueuePosition
	}
	if err := s.repo.Promote(ctx, tx, head.ID); err != nil {
		return nil, appErrors.Internal(err, "failed to promote queued request")
	}
	if _, err := s.repo.CompactQueue(ctx, tx, alumniID, vacated); err != nil {
		return nil, appErrors.Internal(err, "failed to compact mentorship queue")
	}
	head.Status = models.MentorshipStatusPending
	head.QueuePosition = nil
	return head, nil
}

func (s *MentorshipService) notify(ctx context.Context, tx *sqlx.Tx, userID string, kind models.NotificationKind, message, requestID string) (models.Notification, error) {
	ref := requestID
	n := models.Notification{
		UserID:      userID,
		Kind:        kind,
		Message:     message,
		ReferenceID: &ref,
		CreatedAt:   s.now(),
	}
	if err := s.notifications.CreateWithTx(ctx, tx, &n); err != nil {
		return models.Notification{}, appErrors.Internal(err, "failed to record notification")
	}
	return n, nil
}

// afterCommit runs the best-effort side effects of a committed transition.
func (s *MentorshipService) afterCommit(ctx context.Context, alumniID string, outbox []models.Notification) {
	_ = s.cache.Invalidate(ctx, summaryCacheKey(alumniID))
	if s.pusher != nil {
		s.pusher.Dispatch(outbox...)
	}
}

func (s *MentorshipService) emitAudit(ctx context.Context, actorID, action string, req *models.MentorshipRequest, from models.MentorshipStatus) {
	if s.audit == nil || req == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   mentorshipResource,
		ResourceID: &req.ID,
		IPAddress:  "system",
		UserAgent:  "mentorship-engine",
	}
	if from != "" {
		entry.OldValues, _ = json.Marshal(map[string]string{"status": string(from)})
	}
	entry.NewValues, _ = json.Marshal(map[string]interface{}{"status": req.Status, "queue_position": req.QueuePosition})
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to create mentorship audit", zap.String("request_id", req.ID), zap.Error(err))
	}
}
