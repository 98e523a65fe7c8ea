package shipments

import (
	"context"
	"testing"

	"courier-bridge-service/workers/shipments/models"
	"courier-bridge-service/workers/shipments/repositories"
	"courier-bridge-service/workers/storefront/woocommerce"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codOrder(id int64) woocommerce.Order {
	return woocommerce.Order{
		ID:            id,
		Status:        woocommerce.OrderStatusProcessing,
		Total:         "25.50",
		PaymentMethod: woocommerce.PaymentMethodCOD,
		Billing: woocommerce.Address{
			FirstName: "Ελένη",
			LastName:  "Κ.",
			Address1:  "ΡΟΜΒΗΣ 25",
			City:      "ΑΘΗΝΑ",
			Postcode:  "10557",
			Phone:     "+30 691 234 5678",
			Email:     "e@example.com",
		},
	}
}

func TestOrderRequest(t *testing.T) {
	req, warnings, err := OrderRequest(codOrder(1001))
	require.NoError(t, err)

	assert.Equal(t, "Ελένη Κ.", req.RecipientName)
	assert.Equal(t, "ΡΟΜΒΗΣ", req.Street)
	assert.Equal(t, "25", req.StreetNumber)
	assert.Equal(t, "Order #1001", req.Reference1)
	assert.Equal(t, orderWeight, req.Weight)
	assert.True(t, decimal.RequireFromString("25.50").Equal(req.CODAmount))
	// +30 prefix leaves twelve digits
	assert.Len(t, warnings, 1)
}

func TestOrderRequestPrefersShippingAddress(t *testing.T) {
	o := codOrder(1002)
	o.PaymentMethod = "bacs"
	o.Shipping = woocommerce.Address{FirstName: "Άλλος", Address1: "Ερμού 3", City: "ΑΘΗΝΑ", Postcode: "10563"}

	req, _, err := OrderRequest(o)
	require.NoError(t, err)
	assert.Equal(t, "Άλλος", req.RecipientName)
	assert.Equal(t, "Ερμού", req.Street)
	assert.Equal(t, "10563", req.Zipcode)
	assert.True(t, req.CODAmount.IsZero())
}

func TestCreateVouchersForOrders(t *testing.T) {
	courier := &fakeCourier{nextVoucher: "7601", labels: [][]byte{[]byte("%PDF")}}
	f := newFixture(t, courier)
	ctx := context.Background()

	o := codOrder(2001)
	o.Billing.Phone = "6912345678"
	bad := codOrder(2002)
	bad.Total = "abc"

	results, err := f.lifecycle.CreateVouchersForOrders(ctx, []woocommerce.Order{o, bad})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "7601", results[0].VoucherNo)
	assert.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[1].Error)
	assert.Len(t, courier.requests, 1)

	orderID := int64(2001)
	rows, err := f.repo.ListShipments(ctx, repositories.ShipmentFilter{OrderID: &orderID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.SourceStore, rows[0].Source)
	assert.Equal(t, "WooCommerce Order #2001", rows[0].Notes)

	// A second run skips the order that already has a voucher.
	results, err = f.lifecycle.CreateVouchersForOrders(ctx, []woocommerce.Order{o})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
	assert.Equal(t, "7601", results[0].VoucherNo)
	assert.Len(t, courier.requests, 1)
}

func TestCreateVouchersForOrdersRepeatedOrder(t *testing.T) {
	courier := &fakeCourier{nextVoucher: "7603", labels: [][]byte{[]byte("%PDF")}}
	f := newFixture(t, courier)
	ctx := context.Background()

	o := codOrder(2501)
	o.Billing.Phone = "6912345678"

	results, err := f.lifecycle.CreateVouchersForOrders(ctx, []woocommerce.Order{o, o})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Skipped)
	assert.Equal(t, "7603", results[0].VoucherNo)
	assert.True(t, results[1].Skipped)
	assert.Equal(t, "7603", results[1].VoucherNo)
	assert.Len(t, courier.requests, 1)

	orderID := int64(2501)
	rows, err := f.repo.ListShipments(ctx, repositories.ShipmentFilter{OrderID: &orderID})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCreateVouchersForOrdersFlagsBadData(t *testing.T) {
	courier := &fakeCourier{nextVoucher: "7602", labels: [][]byte{[]byte("%PDF")}}
	f := newFixture(t, courier)
	ctx := context.Background()

	o := codOrder(3001)
	o.Billing.Postcode = "1010"
	o.Billing.Phone = "6912345678"

	results, err := f.lifecycle.CreateVouchersForOrders(ctx, []woocommerce.Order{o})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "7602", results[0].VoucherNo)
	assert.Contains(t, results[0].Warning, "zipcode")
	assert.Len(t, courier.requests, 1)

	activity, err := f.repo.RecentActivity(ctx, 0)
	require.NoError(t, err)
	found := false
	for _, a := range activity {
		if a.Action == models.ActionOrderDataWarning {
			found = true
		}
	}
	assert.True(t, found)
}
