package shipments

import (
	"context"
	"encoding/json"
	"fmt"

	"courier-bridge-service/workers/shipments/models"
	"courier-bridge-service/workers/shipments/processors"
	"courier-bridge-service/workers/shipments/repositories"
	"go.uber.org/zap"
)

// Track asks the courier for the latest summary of a shipment and stores it.
func (l *Lifecycle) Track(ctx context.Context, shipmentID uint) (*processors.CarrierTrackingResults, error) {
	s, err := l.repo.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if !s.HasVoucher() {
		return nil, fmt.Errorf("%w: shipment %d has no voucher", ErrConflict, shipmentID)
	}
	return l.refreshTracking(ctx, *s)
}

func (l *Lifecycle) refreshTracking(ctx context.Context, s models.Shipment) (*processors.CarrierTrackingResults, error) {
	result, err := l.courier.Process(ctx, *s.VoucherNo)
	if err != nil {
		l.logger.Error("Failed to track shipment",
			zap.String("voucher_no", *s.VoucherNo),
			zap.Error(err),
		)
		return nil, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	data := string(raw)
	update := repositories.ShipmentUpdate{TrackingData: &data}

	next := nextStatus(s.Status, result)
	if next != s.Status {
		update.Status = &next
	}

	if err := l.repo.UpdateShipment(ctx, s.ID, update); err != nil {
		return nil, err
	}
	if next != s.Status {
		l.repo.LogActivity(ctx, models.ActionTrackingUpdated, s.VoucherNo,
			fmt.Sprintf("%s -> %s (%s)", s.Status, next, result.Status))
	}
	return result, nil
}

// nextStatus moves a shipment the courier holds forward. Local states before
// pickup are never changed by tracking.
func nextStatus(current models.ShipmentStatus, result *processors.CarrierTrackingResults) models.ShipmentStatus {
	if !current.Trackable() {
		return current
	}
	if result.Delivered {
		return models.StatusDelivered
	}
	return models.StatusInTransit
}
