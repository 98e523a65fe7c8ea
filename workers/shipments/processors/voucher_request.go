package processors

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultWeight = 0.5
	MinWeight     = 0.5
)

// Delivery product codes understood by the courier.
const (
	ProductCOD       = "COD"
	ProductSaturday  = "SAT"
	ProductInsurance = "INS"
	ProductMorning   = "MDV"
)

// VoucherRequest carries the recipient and parcel of one voucher. Street
// must not contain the house number; the courier rejects combined strings.
type VoucherRequest struct {
	RecipientName    string
	RecipientCompany string
	Street           string
	StreetNumber     string
	Zipcode          string
	Region           string
	Floor            string
	Phone            string
	CellPhone        string
	Email            string

	Weight float64
	Pieces int

	LengthCm float64
	WidthCm  float64
	HeightCm float64

	CODAmount        decimal.Decimal
	InsuranceAmount  decimal.Decimal
	SaturdayDelivery bool
	MorningDelivery  bool
	DeliveryNotes    string
	Reference1       string
	Reference2       string
	StationCode      string
	StationBranchID  int
}

// Validate checks the fields the courier refuses to work without.
func (r VoucherRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.RecipientName) == "" {
		missing = append(missing, "recipient name")
	}
	if strings.TrimSpace(r.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(r.Zipcode) == "" {
		missing = append(missing, "zipcode")
	}
	if strings.TrimSpace(r.Region) == "" {
		missing = append(missing, "region")
	}
	if strings.TrimSpace(r.Phone) == "" && strings.TrimSpace(r.CellPhone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return &CourierError{
			Kind:    ErrValidation,
			Method:  "validate",
			Message: fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// EffectiveWeight applies the courier's default and floor.
func (r VoucherRequest) EffectiveWeight() float64 {
	if r.Weight <= 0 {
		return DefaultWeight
	}
	if r.Weight < MinWeight {
		return MinWeight
	}
	return r.Weight
}

func (r VoucherRequest) EffectivePieces() int {
	if r.Pieces <= 0 {
		return 1
	}
	return r.Pieces
}

func (r VoucherRequest) DeliveryProducts() []string {
	var products []string
	if r.CODAmount.IsPositive() {
		products = append(products, ProductCOD)
	}
	if r.SaturdayDelivery {
		products = append(products, ProductSaturday)
	}
	if r.InsuranceAmount.IsPositive() {
		products = append(products, ProductInsurance)
	}
	if r.MorningDelivery {
		products = append(products, ProductMorning)
	}
	return products
}

// VolumetricWeight is L×W×H / 5000, in kg.
func VolumetricWeight(lengthCm, widthCm, heightCm float64) float64 {
	return lengthCm * widthCm * heightCm / 5000
}
