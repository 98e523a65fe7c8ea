package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Shipment struct {
	ID              uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	VoucherNo       *string        `gorm:"size:32;uniqueIndex" json:"voucherNo"`
	Source          ShipmentSource `gorm:"size:16;not null;index" json:"source"`
	OrderID         *int64         `gorm:"column:woocommerce_order_id;index" json:"orderId"`
	ManualReference string         `gorm:"size:256" json:"manualReference,omitempty"`

	RecipientName          string `gorm:"not null" json:"recipientName"`
	RecipientAddress       string `gorm:"not null" json:"recipientAddress"`
	RecipientAddressNumber string `gorm:"size:16" json:"recipientAddressNumber"`
	RecipientCity          string `gorm:"not null" json:"recipientCity"`
	RecipientZipcode       string `gorm:"size:10;not null" json:"recipientZipcode"`
	RecipientPhone         string `gorm:"size:20;not null" json:"recipientPhone"`
	RecipientEmail         string `json:"recipientEmail,omitempty"`

	Weight    float64         `json:"weight"`
	Pieces    int             `gorm:"default:1" json:"pieces"`
	CODAmount decimal.Decimal `gorm:"column:cod_amount;type:numeric(10,2);not null;default:0" json:"codAmount"`

	PickupDate   *string `gorm:"size:10" json:"pickupDate"`
	PickupListNo *string `gorm:"size:32;index" json:"pickupListNo"`

	Status       ShipmentStatus `gorm:"size:16;not null;default:DRAFT;index" json:"status"`
	PDFPath      *string        `gorm:"column:pdf_path" json:"pdfPath"`
	TrackingData string         `gorm:"type:text" json:"trackingData,omitempty"`
	Notes        string         `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"column:created_date;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:last_updated" json:"updatedAt"`
}

func (Shipment) TableName() string {
	return "shipments"
}

func (s *Shipment) HasVoucher() bool {
	return s.VoucherNo != nil && *s.VoucherNo != ""
}

func (s *Shipment) HasLabel() bool {
	return s.PDFPath != nil && *s.PDFPath != ""
}
