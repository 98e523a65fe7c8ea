package shipments

import (
	"context"
	"sync"
	"time"

	"courier-bridge-service/workers/shipments/models"
	"courier-bridge-service/workers/shipments/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const trackingConcurrency = 4

// Worker refreshes courier tracking for shipments that have been picked up
// but not yet delivered.
type Worker struct {
	logger    *zap.Logger
	repo      *repositories.Repository
	lifecycle *Lifecycle
	now       func() time.Time

	mu   sync.Mutex
	busy bool
}

func NewWorker(logger *zap.Logger, repo *repositories.Repository, lifecycle *Lifecycle) *Worker {
	return &Worker{
		logger:    logger.Named("tracking"),
		repo:      repo,
		lifecycle: lifecycle,
		now:       time.Now,
	}
}

func (w *Worker) Name() string {
	return "tracking"
}

func (w *Worker) Schedule() string {
	return "*/30 * * * *"
}

func (w *Worker) Ready(time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.busy
}

func (w *Worker) Execute(ctx context.Context) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return
	}
	w.busy = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
	}()

	w.logger.Info("Starting tracking refresh.")

	shipments, err := w.repo.TrackableShipments(ctx)
	if err != nil {
		w.logger.Error("Failed to load trackable shipments", zap.Error(err))
		return
	}

	toCheck := w.shipmentsToCheck(shipments)
	if len(toCheck) == 0 {
		w.logger.Info("No shipments are due for tracking. Tracking work completed")
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(trackingConcurrency)
	for _, s := range toCheck {
		g.Go(func() error {
			// Per-shipment failures are logged by the lifecycle and must not
			// cancel the others.
			_, _ = w.lifecycle.refreshTracking(gctx, s)
			return nil
		})
	}
	_ = g.Wait()

	w.logger.Info("Tracking work completed", zap.Int("checked", len(toCheck)))
}

func (w *Worker) shipmentsToCheck(ss []models.Shipment) (ret []models.Shipment) {
	now := w.now()
	for _, s := range ss {
		if shouldCheck(s, now) {
			ret = append(ret, s)
		}
	}
	return
}

func shouldCheck(s models.Shipment, now time.Time) bool {
	const recheckDelay = 15 * time.Minute

	if s.Status.IsFinal() || !s.HasVoucher() {
		return false
	}
	if s.TrackingData == "" {
		return true
	}
	return now.Sub(s.UpdatedAt) > recheckDelay
}
