package repositories

import (
	"context"
	"errors"
	"time"

	"courier-bridge-service/workers/shipments/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrHasVoucher          = errors.New("shipment has a voucher; cancel the voucher first")
	ErrNoEligibleShipments = errors.New("no ready shipments with a voucher for this date")
)

const dateLayout = "2006-01-02"

// Repository is the shipment store: shipments, pickup lists and the
// activity log. Every mutation writes an activity entry; a failed log write
// never undoes the mutation.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewRepository(db *gorm.DB, logger *zap.Logger) *Repository {
	return &Repository{db: db, logger: logger.Named("store"), now: time.Now}
}

func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&models.Shipment{}, &models.PickupList{}, &models.ActivityLogEntry{})
}

// LogActivity appends to the audit trail. Failures are logged only.
func (r *Repository) LogActivity(ctx context.Context, action string, voucherNo *string, details string) {
	entry := models.ActivityLogEntry{
		Action:    action,
		VoucherNo: voucherNo,
		Details:   details,
		User:      "system",
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		r.logger.Error("Error logging activity",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (r *Repository) RecentActivity(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.ActivityLogEntry
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
