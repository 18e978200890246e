package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// DefaultReviewInterval is how often overdue reviews are reported
const DefaultReviewInterval = 24 * time.Hour

// ReviewReminderWorker periodically reports risks whose review date has passed
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type ReviewReminderWorker struct {
	repo     interfaces.Repository
	notifier interfaces.Notifier
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// ReviewReminderOption configures the worker
type ReviewReminderOption func(*ReviewReminderWorker)

// WithClock replaces time.Now
func WithClock(now func() time.Time) ReviewReminderOption {
	return func(w *ReviewReminderWorker) {
		w.now = now
	}
}

// NewReviewReminderWorker creates a new worker for overdue review reminders
func NewReviewReminderWorker(repo interfaces.Repository, notifier interfaces.Notifier, interval time.Duration, opts ...ReviewReminderOption) *ReviewReminderWorker {
	if interval <= 0 {
		interval = DefaultReviewInterval
	}
	w := &ReviewReminderWorker{
		repo:     repo,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background loop. It does not block server startup.
func (w *ReviewReminderWorker) Start(ctx context.Context) error {
	logging.Default().Info("Review reminder worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ReviewReminderWorker) Stop() {
	logging.Default().Info("Review reminder worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Review reminder worker stopped")
}

func (w *ReviewReminderWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if _, err := w.RunOnce(ctx); err != nil {
		logging.Default().Error("Initial review reminder failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				logging.Default().Error("Review reminder failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Review reminder worker context cancelled")
			return
		}
	}
}

// RunOnce reports the current overdue reviews and returns how many were sent.
// Closed risks are skipped.
func (w *ReviewReminderWorker) RunOnce(ctx context.Context) (int, error) {
	risks, err := w.repo.Risk().ListAll(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list risks")
	}

	active := make([]*model.Risk, 0, len(risks))
	for _, r := range risks {
		if !r.Status.IsClosed() {
			active = append(active, r)
		}
	}

	items := model.OverdueReviews(active, w.now())
	if len(items) == 0 {
		logging.Default().Debug("No overdue reviews")
		return 0, nil
	}

	if err := w.notifier.NotifyOverdueReviews(ctx, items); err != nil {
		return 0, goerr.Wrap(err, "failed to notify overdue reviews", goerr.V("count", len(items)))
	}

	logging.Default().Info("Overdue reviews reported", "count", len(items))
	return len(items), nil
}
