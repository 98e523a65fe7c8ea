package models

import "time"

// PickupList is a snapshot of one courier pickup batch. The counts are
// taken when the batch is created and are not kept in sync afterwards.
type PickupList struct {
	ID            uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	PickupListNo  string           `gorm:"size:32;not null;uniqueIndex" json:"pickupListNo"`
	PickupDate    string           `gorm:"size:10;not null;index" json:"pickupDate"`
	Sequence      int              `gorm:"not null" json:"sequence"`
	TotalVouchers int              `gorm:"not null;default:0" json:"totalVouchers"`
	EshopCount    int              `gorm:"not null;default:0" json:"eshopCount"`
	ManualCount   int              `gorm:"not null;default:0" json:"manualCount"`
	Status        PickupListStatus `gorm:"size:16;not null;default:PENDING" json:"status"`
	PickupTime    string           `gorm:"size:5;default:'10:00'" json:"pickupTime"`
	CreatedAt     time.Time        `json:"createdAt"`
	PickedUpAt    *time.Time       `json:"pickedUpAt"`
}

func (PickupList) TableName() string {
	return "pickup_lists"
}
