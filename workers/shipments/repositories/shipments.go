package repositories

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"courier-bridge-service/workers/shipments/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShipmentUpdate lists the columns that may change after insert. Nil
// fields are left untouched; last_updated is always refreshed.
type ShipmentUpdate struct {
	VoucherNo        *string
	Status           *models.ShipmentStatus
	PickupListNo     *string
	PickupDate       *string
	PDFPath          *string
	TrackingData     *string
	Notes            *string
	RecipientName    *string
	RecipientAddress *string
	RecipientCity    *string
	RecipientZipcode *string
	RecipientPhone   *string
	RecipientEmail   *string
	Weight           *float64
	Pieces           *int
	CODAmount        *decimal.Decimal

	// ClearVoucher sets voucher_no back to NULL.
	ClearVoucher bool
	// ClearPDFPath sets pdf_path back to NULL.
	ClearPDFPath bool
}

func (u ShipmentUpdate) columns(now time.Time) map[string]any {
	cols := map[string]any{"last_updated": now}
	if u.VoucherNo != nil {
		cols["voucher_no"] = *u.VoucherNo
	}
	if u.ClearVoucher {
		cols["voucher_no"] = nil
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.PickupListNo != nil {
		cols["pickup_list_no"] = *u.PickupListNo
	}
	if u.PickupDate != nil {
		cols["pickup_date"] = *u.PickupDate
	}
	if u.PDFPath != nil {
		cols["pdf_path"] = *u.PDFPath
	}
	if u.ClearPDFPath {
		cols["pdf_path"] = nil
	}
	if u.TrackingData != nil {
		cols["tracking_data"] = *u.TrackingData
	}
	if u.Notes != nil {
		cols["notes"] = *u.Notes
	}
	if u.RecipientName != nil {
		cols["recipient_name"] = *u.RecipientName
	}
	if u.RecipientAddress != nil {
		cols["recipient_address"] = *u.RecipientAddress
	}
	if u.RecipientCity != nil {
		cols["recipient_city"] = *u.RecipientCity
	}
	if u.RecipientZipcode != nil {
		cols["recipient_zipcode"] = *u.RecipientZipcode
	}
	if u.RecipientPhone != nil {
		cols["recipient_phone"] = *u.RecipientPhone
	}
	if u.RecipientEmail != nil {
		cols["recipient_email"] = *u.RecipientEmail
	}
	if u.Weight != nil {
		cols["weight"] = *u.Weight
	}
	if u.Pieces != nil {
		cols["pieces"] = *u.Pieces
	}
	if u.CODAmount != nil {
		cols["cod_amount"] = *u.CODAmount
	}
	return cols
}

// ShipmentFilter narrows ListShipments. Zero values mean "any".
type ShipmentFilter struct {
	Source       models.ShipmentSource
	Status       models.ShipmentStatus
	From         *time.Time
	To           *time.Time
	HasVoucher   *bool
	HasLabel     *bool
	PickupListNo string
	OrderID      *int64
}

func (r *Repository) AddShipment(ctx context.Context, s *models.Shipment) (uint, error) {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		r.logger.Error("Error adding shipment",
			zap.String("recipient", s.RecipientName),
			zap.Error(err),
		)
		return 0, err
	}

	r.LogActivity(ctx, models.ActionShipmentCreated, s.VoucherNo, fmt.Sprintf("Source: %s", s.Source))
	return s.ID, nil
}

func (r *Repository) UpdateShipment(ctx context.Context, id uint, u ShipmentUpdate) error {
	cols := u.columns(r.now())
	changed := slices.Sorted(maps.Keys(cols))
	changed = slices.DeleteFunc(changed, func(c string) bool { return c == "last_updated" })

	res := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		r.logger.Error("Error updating shipment", zap.Uint("shipment_id", id), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.LogActivity(ctx, models.ActionShipmentUpdated, u.VoucherNo,
		fmt.Sprintf("Shipment %d: %s", id, strings.Join(changed, ", ")))
	return nil
}

func (r *Repository) GetShipment(ctx context.Context, id uint) (*models.Shipment, error) {
	var s models.Shipment
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) GetShipmentByVoucher(ctx context.Context, voucherNo string) (*models.Shipment, error) {
	var s models.Shipment
	if err := r.db.WithContext(ctx).Where("voucher_no = ?", voucherNo).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) ListShipments(ctx context.Context, f ShipmentFilter) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := applyFilter(r.db.WithContext(ctx), f).
		Order("created_date DESC").
		Order("id DESC").
		Find(&shipments).Error
	if err != nil {
		r.logger.Error("Error getting shipments", zap.Error(err))
	}
	return shipments, err
}

func applyFilter(q *gorm.DB, f ShipmentFilter) *gorm.DB {
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_date < ?", *f.To)
	}
	if f.HasVoucher != nil {
		if *f.HasVoucher {
			q = q.Where("voucher_no IS NOT NULL AND voucher_no <> ''")
		} else {
			q = q.Where("(voucher_no IS NULL OR voucher_no = '')")
		}
	}
	if f.HasLabel != nil {
		if *f.HasLabel {
			q = q.Where("pdf_path IS NOT NULL AND pdf_path <> ''")
		} else {
			q = q.Where("(pdf_path IS NULL OR pdf_path = '')")
		}
	}
	if f.PickupListNo != "" {
		q = q.Where("pickup_list_no = ?", f.PickupListNo)
	}
	if f.OrderID != nil {
		q = q.Where("woocommerce_order_id = ?", *f.OrderID)
	}
	return q
}

// OrdersWithVoucher returns which of orderIDs already have a shipment holding
// a voucher.
func (r *Repository) OrdersWithVoucher(ctx context.Context, orderIDs []int64) (map[int64]string, error) {
	found := make(map[int64]string)
	if len(orderIDs) == 0 {
		return found, nil
	}
	var rows []models.Shipment
	err := r.db.WithContext(ctx).
		Select("woocommerce_order_id", "voucher_no").
		Where("woocommerce_order_id IN ?", orderIDs).
		Where("voucher_no IS NOT NULL AND voucher_no <> ''").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, s := range rows {
		if s.OrderID != nil && s.VoucherNo != nil {
			found[*s.OrderID] = *s.VoucherNo
		}
	}
	return found, nil
}

// TrackableShipments returns shipments the courier holds and has not yet
// delivered.
func (r *Repository) TrackableShipments(ctx context.Context) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.ShipmentStatus{models.StatusPickedUp, models.StatusInTransit}).
		Where("voucher_no IS NOT NULL AND voucher_no <> ''").
		Order("last_updated ASC").
		Find(&shipments).Error
	return shipments, err
}

// DeleteShipment removes a shipment that never got a voucher.
func (r *Repository) DeleteShipment(ctx context.Context, id uint) error {
	s, err := r.GetShipment(ctx, id)
	if err != nil {
		return err
	}
	if s.HasVoucher() {
		r.logger.Warn("Cannot delete shipment with voucher",
			zap.Uint("shipment_id", id),
			zap.String("voucher_no", *s.VoucherNo),
		)
		return ErrHasVoucher
	}

	res := r.db.WithContext(ctx).
		Where("id = ? AND (voucher_no IS NULL OR voucher_no = '')", id).
		Delete(&models.Shipment{})
	if res.Error != nil {
		r.logger.Error("Error deleting shipment", zap.Uint("shipment_id", id), zap.Error(res.Error))
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrHasVoucher
	}

	r.LogActivity(ctx, models.ActionShipmentDeleted, nil, fmt.Sprintf("Shipment ID: %d", id))
	return nil
}
