package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/pkg/jobs"
)

const notificationPushJob = "notification_push"

type notificationPublisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) (int64, error)
}

// NotificationDispatcherConfig controls realtime push fan-out.
type NotificationDispatcherConfig struct {
	Enabled       bool
	Workers       int
	Retries       int
	RetryDelay    time.Duration
	ChannelPrefix string
}

// NotificationDispatcher pushes committed notifications to per-user Redis channels on a worker pool.
// Push is best effort: the mailbox row is the source of truth and is never touched here.
type NotificationDispatcher struct {
	queue     *jobs.Queue
	publisher notificationPublisher
	metrics   *MetricsService
	logger    *zap.Logger
	prefix    string
	enabled   bool
}

// NewNotificationDispatcher wires the push worker pool.
func NewNotificationDispatcher(publisher notificationPublisher, metrics *MetricsService, logger *zap.Logger, cfg NotificationDispatcherConfig) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = "notifications"
	}
	d := &NotificationDispatcher{
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		prefix:    cfg.ChannelPrefix,
		enabled:   cfg.Enabled && publisher != nil,
	}
	d.queue = jobs.NewQueue(notificationPushJob, d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnDone:     d.onDone,
	})
	return d
}

// Start launches the push workers.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	if d == nil || !d.enabled {
		return
	}
	d.queue.Start(ctx)
}

// Stop halts the workers; queued pushes are discarded.
func (d *NotificationDispatcher) Stop() {
	if d == nil || !d.enabled {
		return
	}
	d.queue.Stop()
	stats := d.queue.Stats()
	d.logger.Info("notification dispatcher stopped",
		zap.Uint64("processed", stats.Processed),
		zap.Uint64("failed", stats.Failed),
		zap.Uint64("dropped", stats.Dropped),
		zap.Int("discarded", stats.Pending),
	)
}

// Channel returns the pub/sub channel for a user.
func (d *NotificationDispatcher) Channel(userID string) string {
	return fmt.Sprintf("%s:%s", d.prefix, userID)
}

// Dispatch enqueues pushes without blocking the caller.
func (d *NotificationDispatcher) Dispatch(notifications ...models.Notification) {
	if d == nil || !d.enabled {
		return
	}
	for _, n := range notifications {
		err := d.queue.TryEnqueue(jobs.Job{ID: n.ID, Type: notificationPushJob, Payload: n})
		if err == nil {
			continue
		}
		if errors.Is(err, jobs.ErrQueueFull) {
			d.metrics.RecordPush("dropped")
		}
		d.logger.Warn("notification push not enqueued", zap.String("notification_id", n.ID), zap.Error(err))
	}
}

func (d *NotificationDispatcher) handle(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(models.Notification)
	if !ok {
		return fmt.Errorf("unexpected push payload %T", job.Payload)
	}
	receivers, err := d.publisher.Publish(ctx, d.Channel(n.UserID), n)
	if err != nil {
		return err
	}
	if receivers == 0 {
		d.metrics.RecordPush("no_subscriber")
		return nil
	}
	d.metrics.RecordPush("published")
	return nil
}

// onDone only sees failures; successful outcomes are recorded in handle.
func (d *NotificationDispatcher) onDone(job jobs.Job, err error) {
	if err != nil {
		d.metrics.RecordPush("failed")
	}
}
