package shipments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courier-bridge-service/workers/shipments/models"
	"courier-bridge-service/workers/shipments/repositories"
	"go.uber.org/zap"
)

// Notifier tells the operator that the courier is about to arrive.
type Notifier interface {
	PickupReminder(ctx context.Context, pickupAt time.Time, pending int64)
}

// LogNotifier writes the reminder to the log and the activity trail.
type LogNotifier struct {
	logger *zap.Logger
	repo   *repositories.Repository
}

func NewLogNotifier(logger *zap.Logger, repo *repositories.Repository) *LogNotifier {
	return &LogNotifier{logger: logger, repo: repo}
}

func (n *LogNotifier) PickupReminder(ctx context.Context, pickupAt time.Time, pending int64) {
	msg := fmt.Sprintf("Courier pickup at %s, %d shipment(s) not yet in a pickup list", pickupAt.Format("15:04"), pending)
	n.logger.Warn(msg)
	n.repo.LogActivity(ctx, models.ActionPickupReminder, nil, msg)
}

// ReminderWorker fires once a day inside [pickup-lead, pickup).
type ReminderWorker struct {
	logger   *zap.Logger
	repo     *repositories.Repository
	notifier Notifier
	hour     int
	minute   int
	lead     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	firedOn string
}

// ParsePickupTime parses an "HH:MM" time of day.
func ParsePickupTime(hhmm string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pickup time %q: %w", hhmm, err)
	}
	return t.Hour(), t.Minute(), nil
}

func NewReminderWorker(logger *zap.Logger, repo *repositories.Repository, notifier Notifier, pickupTime string, lead time.Duration) (*ReminderWorker, error) {
	hour, minute, err := ParsePickupTime(pickupTime)
	if err != nil {
		return nil, err
	}
	return &ReminderWorker{
		logger:   logger.Named("reminder"),
		repo:     repo,
		notifier: notifier,
		hour:     hour,
		minute:   minute,
		lead:     lead,
		now:      time.Now,
	}, nil
}

func (w *ReminderWorker) Name() string {
	return "pickup-reminder"
}

func (w *ReminderWorker) Schedule() string {
	return "* * * * *"
}

func (w *ReminderWorker) pickupAt(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), w.hour, w.minute, 0, 0, now.Location())
}

// Ready reports whether now is inside today's reminder window and the
// reminder has not fired yet today.
func (w *ReminderWorker) Ready(now time.Time) bool {
	pickup := w.pickupAt(now)
	if now.Before(pickup.Add(-w.lead)) || !now.Before(pickup) {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firedOn != now.Format("2006-01-02")
}

func (w *ReminderWorker) Execute(ctx context.Context) {
	now := w.now()
	day := now.Format("2006-01-02")

	w.mu.Lock()
	if w.firedOn == day {
		w.mu.Unlock()
		return
	}
	w.firedOn = day
	w.mu.Unlock()

	pending, err := w.repo.CountEligibleForPickup(ctx, now)
	if err != nil {
		w.logger.Error("Failed to count pending shipments", zap.Error(err))
	}
	w.notifier.PickupReminder(ctx, w.pickupAt(now), pending)
}
