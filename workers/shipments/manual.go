package shipments

import (
	"context"
	"strings"

	"courier-bridge-service/workers/shipments/models"
	"courier-bridge-service/workers/shipments/processors"
	"github.com/shopspring/decimal"
)

const manualDefaultWeight = 1.0

// ManualEntry is a shipment typed in by an operator rather than pulled from
// the store.
type ManualEntry struct {
	RecipientName    string          `json:"recipientName"`
	Street           string          `json:"street"`
	StreetNumber     string          `json:"streetNumber"`
	City             string          `json:"city"`
	Zipcode          string          `json:"zipcode"`
	Phone            string          `json:"phone"`
	Email            string          `json:"email"`
	Weight           float64         `json:"weight"`
	Pieces           int             `json:"pieces"`
	CODAmount        decimal.Decimal `json:"codAmount"`
	InsuranceAmount  decimal.Decimal `json:"insuranceAmount"`
	SaturdayDelivery bool            `json:"saturdayDelivery"`
	MorningDelivery  bool            `json:"morningDelivery"`
	Reference        string          `json:"reference"`
	Notes            string          `json:"notes"`
}

func (e ManualEntry) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"recipientName", e.RecipientName},
		{"street", e.Street},
		{"city", e.City},
		{"zipcode", e.Zipcode},
		{"phone", e.Phone},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &FieldError{Field: r.field, Message: r.field + " is required"}
		}
	}
	if !ValidZipcode(e.Zipcode) {
		return &FieldError{Field: "zipcode", Message: "zipcode must be exactly 5 digits"}
	}
	if !ValidPhone(e.Phone) {
		return &FieldError{Field: "phone", Message: "phone must have exactly 10 digits"}
	}
	if e.CODAmount.IsNegative() {
		return &FieldError{Field: "codAmount", Message: "codAmount cannot be negative"}
	}
	return nil
}

func (e ManualEntry) request() processors.VoucherRequest {
	street, number := SplitAddress(strings.TrimSpace(e.Street))
	if explicit := strings.TrimSpace(e.StreetNumber); explicit != "" {
		number = explicit
	}
	weight := e.Weight
	if weight <= 0 {
		weight = manualDefaultWeight
	}
	return processors.VoucherRequest{
		RecipientName:    strings.TrimSpace(e.RecipientName),
		Street:           street,
		StreetNumber:     number,
		Zipcode:          strings.TrimSpace(e.Zipcode),
		Region:           strings.TrimSpace(e.City),
		Phone:            NormalizePhone(e.Phone),
		Email:            strings.TrimSpace(e.Email),
		Weight:           weight,
		Pieces:           e.Pieces,
		CODAmount:        e.CODAmount.Round(2),
		InsuranceAmount:  e.InsuranceAmount.Round(2),
		SaturdayDelivery: e.SaturdayDelivery,
		MorningDelivery:  e.MorningDelivery,
		DeliveryNotes:    e.Notes,
		Reference1:       e.Reference,
	}
}

// SaveManual validates the entry and either stores it as a draft or runs
// the full voucher flow for it.
func (l *Lifecycle) SaveManual(ctx context.Context, e ManualEntry, createVoucher bool) (*VoucherOutcome, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	req := e.request()
	meta := ShipmentMeta{
		Source:          models.SourceManual,
		ManualReference: e.Reference,
		Notes:           e.Notes,
	}

	if createVoucher {
		return l.CreateVoucherWithLabel(ctx, req, meta)
	}

	id, err := l.repo.AddShipment(ctx, newShipment(req, meta))
	if err != nil {
		return nil, err
	}
	return &VoucherOutcome{ShipmentID: id}, nil
}
