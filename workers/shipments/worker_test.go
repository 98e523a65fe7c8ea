package shipments

import (
	"context"
	"testing"
	"time"

	"courier-bridge-service/workers/shipments/models"
	"courier-bridge-service/workers/shipments/processors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pickedUpShipment(t *testing.T, f *fixture, voucherNo string) uint {
	t.Helper()
	ctx := context.Background()
	f.courier.nextVoucher = voucherNo
	f.courier.labels = [][]byte{[]byte("%PDF")}
	f.courier.pickup = &processors.PickupListResult{PickupListNo: "PL-" + voucherNo}

	out, err := f.lifecycle.CreateVoucherWithLabel(ctx, validRequest(), ShipmentMeta{Source: models.SourceManual})
	require.NoError(t, err)
	_, err = f.lifecycle.CreatePickupList(ctx, time.Now())
	require.NoError(t, err)
	return out.ShipmentID
}

func TestTrackMovesToInTransitThenDelivered(t *testing.T) {
	f := newFixture(t, &fakeCourier{})
	ctx := context.Background()
	id := pickedUpShipment(t, f, "7701")

	f.courier.tracking = &processors.CarrierTrackingResults{TrackingNumber: "7701", Status: "Σε διακίνηση"}
	_, err := f.lifecycle.Track(ctx, id)
	require.NoError(t, err)
	s, err := f.repo.GetShipment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInTransit, s.Status)
	assert.Contains(t, s.TrackingData, "Σε διακίνηση")

	f.courier.tracking = &processors.CarrierTrackingResults{TrackingNumber: "7701", Status: "Παραδόθηκε", Delivered: true}
	_, err = f.lifecycle.Track(ctx, id)
	require.NoError(t, err)
	s, err = f.repo.GetShipment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, s.Status)
}

func TestTrackLeavesReadyShipmentsAlone(t *testing.T) {
	f := newFixture(t, &fakeCourier{nextVoucher: "7702", labels: [][]byte{[]byte("%PDF")}})
	ctx := context.Background()
	out, err := f.lifecycle.CreateVoucherWithLabel(ctx, validRequest(), ShipmentMeta{Source: models.SourceManual})
	require.NoError(t, err)

	f.courier.tracking = &processors.CarrierTrackingResults{TrackingNumber: "7702", Delivered: true}
	_, err = f.lifecycle.Track(ctx, out.ShipmentID)
	require.NoError(t, err)

	s, err := f.repo.GetShipment(ctx, out.ShipmentID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, s.Status)
}

func TestWorkerExecuteTracksPickedUpShipments(t *testing.T) {
	f := newFixture(t, &fakeCourier{})
	ctx := context.Background()
	id := pickedUpShipment(t, f, "7703")
	f.courier.tracking = &processors.CarrierTrackingResults{TrackingNumber: "7703", Delivered: true}

	w := NewWorker(zap.NewNop(), f.repo, f.lifecycle)
	assert.True(t, w.Ready(time.Now()))
	w.Execute(ctx)
	assert.True(t, w.Ready(time.Now()))

	s, err := f.repo.GetShipment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, s.Status)
}

func TestShouldCheck(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	voucher := "1"

	fresh := models.Shipment{VoucherNo: &voucher, Status: models.StatusPickedUp}
	assert.True(t, shouldCheck(fresh, now))

	recent := models.Shipment{VoucherNo: &voucher, Status: models.StatusInTransit, TrackingData: "{}", UpdatedAt: now.Add(-5 * time.Minute)}
	assert.False(t, shouldCheck(recent, now))

	stale := recent
	stale.UpdatedAt = now.Add(-time.Hour)
	assert.True(t, shouldCheck(stale, now))

	delivered := models.Shipment{VoucherNo: &voucher, Status: models.StatusDelivered}
	assert.False(t, shouldCheck(delivered, now))
}
