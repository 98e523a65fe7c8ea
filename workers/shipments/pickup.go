package shipments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courier-bridge-service/workers/shipments/models"
	"courier-bridge-service/workers/shipments/repositories"
	"go.uber.org/zap"
)

type PickupOutcome struct {
	List           *models.PickupList `json:"list"`
	UnprintedCount int                `json:"unprintedCount"`
}

// CreatePickupList issues the courier pickup list for day and batches the
// day's ready shipments into it. Only one batch runs at a time; a second
// caller gets ErrConflict immediately.
func (l *Lifecycle) CreatePickupList(ctx context.Context, day time.Time) (*PickupOutcome, error) {
	if !l.batchMu.TryLock() {
		return nil, fmt.Errorf("%w: a pickup list is already being created", ErrConflict)
	}
	defer l.batchMu.Unlock()

	if day.IsZero() {
		day = l.now()
	}
	log := l.logger.With(zap.String("pickup_date", day.Format("2006-01-02")))

	n, err := l.repo.CountEligibleForPickup(ctx, day)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %w", ErrConflict, repositories.ErrNoEligibleShipments)
	}

	res, err := l.courier.IssuePickupList(ctx, day)
	if err != nil {
		log.Error("Pickup list not issued", zap.Error(err))
		return nil, err
	}
	log = log.With(zap.String("pickup_list_no", res.PickupListNo))

	list, err := l.repo.CreatePickupListBatch(context.WithoutCancel(ctx), repositories.PickupBatch{
		Date:         day,
		PickupListNo: res.PickupListNo,
		PickupTime:   l.pickupTime,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNoEligibleShipments) {
			err = fmt.Errorf("%w: %w", ErrConflict, err)
		}
		log.Error("Pickup list issued but not recorded", zap.Error(err))
		return nil, fmt.Errorf("pickup list %s issued but not recorded: %w", res.PickupListNo, err)
	}

	log.Info("Pickup list created", zap.Int("shipments", list.TotalVouchers))
	return &PickupOutcome{List: list, UnprintedCount: res.UnprintedCount}, nil
}

// ExportPickupListPDF saves the courier's printable pickup list next to the
// labels of its day.
func (l *Lifecycle) ExportPickupListPDF(ctx context.Context, pickupListNo string) (string, error) {
	list, err := l.repo.GetPickupList(ctx, pickupListNo)
	if err != nil {
		return "", err
	}
	day, err := time.ParseInLocation("2006-01-02", list.PickupDate, time.Local)
	if err != nil {
		return "", fmt.Errorf("pickup list %s has bad date %q: %w", pickupListNo, list.PickupDate, err)
	}

	data, err := l.courier.FetchPickupListPDF(ctx, pickupListNo, day)
	if err != nil {
		return "", err
	}
	p, err := l.labels.SavePickupList(pickupListNo, data, day)
	if err != nil {
		return "", err
	}
	l.archiveCopy(ctx, p, data)
	return p, nil
}

func (l *Lifecycle) CompletePickup(ctx context.Context, pickupListNo string) error {
	return l.repo.MarkPickupCompleted(ctx, pickupListNo)
}
