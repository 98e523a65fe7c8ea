package models

import "time"

const (
	ActionShipmentCreated   = "SHIPMENT_CREATED"
	ActionShipmentUpdated   = "SHIPMENT_UPDATED"
	ActionShipmentDeleted   = "SHIPMENT_DELETED"
	ActionLabelSaved        = "LABEL_SAVED"
	ActionLabelFailed       = "LABEL_FAILED"
	ActionVoucherCancelled  = "VOUCHER_CANCELLED"
	ActionPickupListCreated = "PICKUP_LIST_CREATED"
	ActionPickupCompleted   = "PICKUP_COMPLETED"
	ActionPickupReminder    = "PICKUP_REMINDER"
	ActionTrackingUpdated   = "TRACKING_UPDATED"
	ActionOrderDataWarning  = "ORDER_DATA_WARNING"
)

// ActivityLogEntry rows are only ever inserted.
type ActivityLogEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
	Action    string    `gorm:"size:32;not null" json:"action"`
	VoucherNo *string   `gorm:"size:32" json:"voucherNo"`
	Details   string    `gorm:"type:text" json:"details"`
	User      string    `gorm:"size:32;default:system" json:"user"`
}

func (ActivityLogEntry) TableName() string {
	return "activity_log"
}
