package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courier-bridge-service/workers/shipments/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PickupBatch struct {
	Date time.Time
	// PickupListNo is the courier's number for the batch. When empty a local
	// number is derived from the date and the day's sequence.
	PickupListNo string
	PickupTime   string
}

func eligibleForPickup(q *gorm.DB, day time.Time) *gorm.DB {
	start, end := dayBounds(day)
	return q.Model(&models.Shipment{}).
		Where("created_date >= ? AND created_date < ?", start, end).
		Where("status = ?", models.StatusReady).
		Where("voucher_no IS NOT NULL AND voucher_no <> ''").
		Where("(pickup_list_no IS NULL OR pickup_list_no = '')")
}

// CountEligibleForPickup counts the day's READY shipments with a voucher that
// are not yet in a pickup list.
func (r *Repository) CountEligibleForPickup(ctx context.Context, day time.Time) (int64, error) {
	var n int64
	err := eligibleForPickup(r.db.WithContext(ctx), day).Count(&n).Error
	return n, err
}

// CreatePickupListBatch snapshots the eligible shipments of b.Date into a new
// pickup list, stamps them with its number and marks them PICKED_UP. It
// returns ErrNoEligibleShipments when there is nothing to batch, so a repeated
// call for the same day never reassigns shipments.
//
// The sequence number is computed and inserted in one transaction, but two
// concurrent callers can still race on it; callers must serialise.
func (r *Repository) CreatePickupListBatch(ctx context.Context, b PickupBatch) (*models.PickupList, error) {
	day := b.Date
	if day.IsZero() {
		day = r.now()
	}
	dateStr := day.Format(dateLayout)

	var list models.PickupList
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shipments []models.Shipment
		if err := eligibleForPickup(tx, day).Find(&shipments).Error; err != nil {
			return err
		}
		if len(shipments) == 0 {
			return ErrNoEligibleShipments
		}

		var existing int64
		if err := tx.Model(&models.PickupList{}).Where("pickup_date = ?", dateStr).Count(&existing).Error; err != nil {
			return err
		}
		seq := int(existing) + 1

		number := b.PickupListNo
		if number == "" {
			number = fmt.Sprintf("%s_%02d", day.Format("20060102"), seq)
		}

		ids := make([]uint, 0, len(shipments))
		eshop, manual := 0, 0
		for _, s := range shipments {
			ids = append(ids, s.ID)
			switch s.Source {
			case models.SourceStore:
				eshop++
			case models.SourceManual:
				manual++
			}
		}

		list = models.PickupList{
			PickupListNo:  number,
			PickupDate:    dateStr,
			Sequence:      seq,
			TotalVouchers: len(shipments),
			EshopCount:    eshop,
			ManualCount:   manual,
			Status:        models.PickupPending,
			PickupTime:    b.PickupTime,
		}
		if list.PickupTime == "" {
			list.PickupTime = "10:00"
		}
		if err := tx.Create(&list).Error; err != nil {
			return err
		}

		return tx.Model(&models.Shipment{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"pickup_list_no": number,
				"pickup_date":    dateStr,
				"status":         models.StatusPickedUp,
				"last_updated":   r.now(),
			}).Error
	})
	if err != nil {
		if !errors.Is(err, ErrNoEligibleShipments) {
			r.logger.Error("Error creating pickup list", zap.String("pickup_date", dateStr), zap.Error(err))
		}
		return nil, err
	}

	r.LogActivity(ctx, models.ActionPickupListCreated, nil,
		fmt.Sprintf("List: %s, Shipments: %d", list.PickupListNo, list.TotalVouchers))
	return &list, nil
}

func (r *Repository) GetPickupList(ctx context.Context, pickupListNo string) (*models.PickupList, error) {
	var list models.PickupList
	if err := r.db.WithContext(ctx).Where("pickup_list_no = ?", pickupListNo).First(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *Repository) ListPickupLists(ctx context.Context, limit int) ([]models.PickupList, error) {
	if limit <= 0 {
		limit = 30
	}
	var lists []models.PickupList
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&lists).Error
	return lists, err
}

func (r *Repository) PickupListShipments(ctx context.Context, pickupListNo string) ([]models.Shipment, error) {
	return r.ListShipments(ctx, ShipmentFilter{PickupListNo: pickupListNo})
}

// MarkPickupCompleted records that the courier collected the list.
func (r *Repository) MarkPickupCompleted(ctx context.Context, pickupListNo string) error {
	now := r.now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PickupList{}).
			Where("pickup_list_no = ?", pickupListNo).
			Updates(map[string]any{
				"status":       models.PickupPickedUp,
				"picked_up_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Shipment{}).
			Where("pickup_list_no = ?", pickupListNo).
			Where("status IN ?", []models.ShipmentStatus{models.StatusReady, models.StatusPickedUp}).
			Updates(map[string]any{
				"status":       models.StatusPickedUp,
				"last_updated": now,
			}).Error
	})
	if err != nil {
		r.logger.Error("Error marking pickup completed", zap.String("pickup_list_no", pickupListNo), zap.Error(err))
		return err
	}

	r.LogActivity(ctx, models.ActionPickupCompleted, nil, fmt.Sprintf("Pickup list: %s", pickupListNo))
	return nil
}
