package processors

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateListsMissingFields(t *testing.T) {
	err := VoucherRequest{RecipientName: "A"}.Validate()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "missing required fields: street, zipcode, region, phone", err.Error())

	ok := VoucherRequest{RecipientName: "A", Street: "S", Zipcode: "10557", Region: "R", CellPhone: "6912345678"}
	assert.NoError(t, ok.Validate())
}

func TestEffectiveWeightAndPieces(t *testing.T) {
	assert.Equal(t, DefaultWeight, VoucherRequest{}.EffectiveWeight())
	assert.Equal(t, MinWeight, VoucherRequest{Weight: 0.2}.EffectiveWeight())
	assert.Equal(t, 2.5, VoucherRequest{Weight: 2.5}.EffectiveWeight())
	assert.Equal(t, 1, VoucherRequest{}.EffectivePieces())
	assert.Equal(t, 3, VoucherRequest{Pieces: 3}.EffectivePieces())
}

func TestDeliveryProducts(t *testing.T) {
	assert.Empty(t, VoucherRequest{}.DeliveryProducts())

	r := VoucherRequest{
		CODAmount:        decimal.RequireFromString("25.50"),
		SaturdayDelivery: true,
		InsuranceAmount:  decimal.NewFromInt(100),
		MorningDelivery:  true,
	}
	assert.Equal(t, []string{ProductCOD, ProductSaturday, ProductInsurance, ProductMorning}, r.DeliveryProducts())
}

func TestVolumetricWeight(t *testing.T) {
	assert.InDelta(t, 1.2, VolumetricWeight(20, 30, 10), 1e-9)
}

func TestErrorKinds(t *testing.T) {
	err := &CourierError{Kind: ErrRateLimited, Message: "Rate limit exceeded"}
	assert.True(t, Retryable(err))
	assert.False(t, Retryable(&CourierError{Kind: ErrAuth}))
	assert.False(t, Retryable(errors.New("other")))

	unprinted := &UnprintedVouchersError{Message: "blocked", Vouchers: []string{"1", "2"}}
	assert.ErrorIs(t, unprinted, ErrValidation)
	assert.Equal(t, "blocked (unprinted: 1, 2)", unprinted.Error())
}
