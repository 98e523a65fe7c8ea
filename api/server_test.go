package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"courier-bridge-service/config"
	"courier-bridge-service/core"
	"courier-bridge-service/workers/shipments"
	"courier-bridge-service/workers/shipments/processors"
	"courier-bridge-service/workers/shipments/repositories"
	"courier-bridge-service/workers/storefront/woocommerce"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCourier struct {
	voucherErr error
	label      []byte
	pickupErr  error
	next       int
}

func (c *stubCourier) CreateVoucher(context.Context, processors.VoucherRequest) (*processors.Voucher, error) {
	if c.voucherErr != nil {
		return nil, c.voucherErr
	}
	c.next++
	return &processors.Voucher{VoucherNo: fmt.Sprintf("74%08d", c.next)}, nil
}

func (c *stubCourier) FetchLabel(context.Context, string, processors.LabelFormat) ([]byte, error) {
	return c.label, nil
}

func (c *stubCourier) IssuePickupList(context.Context, time.Time) (*processors.PickupListResult, error) {
	if c.pickupErr != nil {
		return nil, c.pickupErr
	}
	return &processors.PickupListResult{PickupListNo: "PL1"}, nil
}

func (c *stubCourier) FetchPickupListPDF(context.Context, string, time.Time) ([]byte, error) {
	return []byte("%PDF"), nil
}

func (c *stubCourier) DeleteVoucher(context.Context, string) error {
	return nil
}

func (c *stubCourier) Process(context.Context, string) (*processors.CarrierTrackingResults, error) {
	return &processors.CarrierTrackingResults{}, nil
}

type stubOrders struct {
	orders []woocommerce.Order
}

func (s stubOrders) ProcessingOrders() []woocommerce.Order {
	return s.orders
}

func (s stubOrders) Orders(_ context.Context, ids []int64) ([]woocommerce.Order, error) {
	var ret []woocommerce.Order
	for _, o := range s.orders {
		for _, id := range ids {
			if o.ID == id {
				ret = append(ret, o)
			}
		}
	}
	return ret, nil
}

func newTestServer(t *testing.T, courier *stubCourier, orders OrderSource) *Server {
	t.Helper()
	logger := zap.NewNop()
	db, err := core.OpenDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)
	repo := repositories.NewRepository(db, logger)
	require.NoError(t, repo.Migrate())

	lifecycle := shipments.NewLifecycle(logger, courier, repo, shipments.NewLabelStore(afero.NewMemMapFs(), "labels"),
		shipments.WithSleep(func(context.Context, time.Duration) error { return nil }),
	)
	return New(logger, lifecycle, repo, orders)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

const manualBody = `{"recipientName":"Μαρία","street":"ΡΟΜΒΗΣ 25","city":"ΑΘΗΝΑ","zipcode":"10557","phone":"6912345678","codAmount":"25.50"}`

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &stubCourier{}, nil)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestManualShipmentFlow(t *testing.T) {
	s := newTestServer(t, &stubCourier{label: []byte("%PDF")}, nil)

	rec := do(t, s, http.MethodPost, "/api/shipments/manual", manualBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out shipments.VoucherOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.VoucherNo)
	assert.NotEmpty(t, out.PDFPath)
	assert.Empty(t, out.Warning)

	rec = do(t, s, http.MethodGet, "/api/shipments/by-voucher/"+out.VoucherNo, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodDelete, fmt.Sprintf("/api/shipments/%d", out.ShipmentID), "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/stats/today", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats repositories.DayStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Manual)
	assert.Equal(t, "25.5", stats.CODTotal.String())
}

func TestManualShipmentLabelWarning(t *testing.T) {
	s := newTestServer(t, &stubCourier{}, nil)

	rec := do(t, s, http.MethodPost, "/api/shipments/manual", manualBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var out shipments.VoucherOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Warning)
	assert.Empty(t, out.PDFPath)

	rec = do(t, s, http.MethodGet, "/api/shipments?has_label=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestManualShipmentInvalidZip(t *testing.T) {
	s := newTestServer(t, &stubCourier{}, nil)

	body := strings.Replace(manualBody, "10557", "1010", 1)
	rec := do(t, s, http.MethodPost, "/api/shipments/manual", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "zipcode", decodeError(t, rec).Field)
}

func TestCourierErrorsMapToStatus(t *testing.T) {
	s := newTestServer(t, &stubCourier{voucherErr: &processors.CourierError{Kind: processors.ErrAuth, Message: "Invalid API key"}}, nil)
	rec := do(t, s, http.MethodPost, "/api/shipments/manual", manualBody)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "courier_auth", decodeError(t, rec).Code)

	s = newTestServer(t, &stubCourier{voucherErr: &processors.CourierError{Kind: processors.ErrValidation, Message: "Λάθος διεύθυνση"}}, nil)
	rec = do(t, s, http.MethodPost, "/api/shipments/manual", manualBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Λάθος διεύθυνση", decodeError(t, rec).Message)
}

func TestPickupListUnprinted(t *testing.T) {
	courier := &stubCourier{
		label:     []byte("%PDF"),
		pickupErr: &processors.UnprintedVouchersError{Message: "unprinted", Vouchers: []string{"7400000009"}},
	}
	s := newTestServer(t, courier, nil)

	rec := do(t, s, http.MethodPost, "/api/pickup-lists", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/shipments/manual", manualBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/pickup-lists", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "unprinted_vouchers", payload.Code)
	assert.Equal(t, []string{"7400000009"}, payload.Vouchers)

	courier.pickupErr = nil
	rec = do(t, s, http.MethodPost, "/api/pickup-lists", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/pickup-lists/PL1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/pickup-lists/PL1/complete", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestShipmentNotFound(t *testing.T) {
	s := newTestServer(t, &stubCourier{}, nil)
	rec := do(t, s, http.MethodGet, "/api/shipments/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrdersEndpoints(t *testing.T) {
	s := newTestServer(t, &stubCourier{}, nil)
	rec := do(t, s, http.MethodGet, "/api/orders", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	orders := stubOrders{orders: []woocommerce.Order{{
		ID:     501,
		Status: woocommerce.OrderStatusProcessing,
		Total:  "10.00",
		Billing: woocommerce.Address{
			FirstName: "Άννα", Address1: "ΡΟΜΒΗΣ 25", City: "ΑΘΗΝΑ", Postcode: "10557", Phone: "6912345678",
		},
	}}}
	s = newTestServer(t, &stubCourier{label: []byte("%PDF")}, orders)

	rec = do(t, s, http.MethodPost, "/api/orders/vouchers", `{"orderIds":[501]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var results []shipments.OrderResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].VoucherNo)

	rec = do(t, s, http.MethodGet, "/api/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []orderRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, results[0].VoucherNo, rows[0].VoucherNo)
}

func TestActivityAndPeriodStats(t *testing.T) {
	s := newTestServer(t, &stubCourier{label: []byte("%PDF")}, nil)
	rec := do(t, s, http.MethodPost, "/api/shipments/manual", manualBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/activity?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.NotEmpty(t, entries)

	rec = do(t, s, http.MethodGet, "/api/stats/period?days=7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var period repositories.PeriodStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &period))
	assert.Equal(t, 7, period.Days)
	assert.Equal(t, 1, period.TotalShipments)

	rec = do(t, s, http.MethodGet, "/api/stats/period?days=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
