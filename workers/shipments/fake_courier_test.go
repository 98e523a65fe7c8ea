package shipments

import (
	"context"
	"sync"
	"testing"
	"time"

	"courier-bridge-service/config"
	"courier-bridge-service/core"
	"courier-bridge-service/workers/shipments/processors"
	"courier-bridge-service/workers/shipments/repositories"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type labelCall struct {
	voucherNo string
	format    processors.LabelFormat
}

// fakeCourier records calls and answers from canned values.
type fakeCourier struct {
	mu sync.Mutex

	voucherErr  error
	nextVoucher string
	requests    []processors.VoucherRequest

	// labels are returned in order; a nil entry means an empty label.
	labels     [][]byte
	labelErr   error
	labelCalls []labelCall

	pickup      *processors.PickupListResult
	pickupErr   error
	pickupCalls int
	pickupGate  chan struct{}

	pickupPDF []byte
	deleted   []string
	deleteErr error

	tracking    *processors.CarrierTrackingResults
	trackingErr error
}

func (f *fakeCourier) CreateVoucher(_ context.Context, req processors.VoucherRequest) (*processors.Voucher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.voucherErr != nil {
		return nil, f.voucherErr
	}
	no := f.nextVoucher
	if no == "" {
		no = "7400000001"
	}
	return &processors.Voucher{VoucherNo: no}, nil
}

func (f *fakeCourier) FetchLabel(_ context.Context, voucherNo string, format processors.LabelFormat) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labelCalls = append(f.labelCalls, labelCall{voucherNo, format})
	if f.labelErr != nil {
		return nil, f.labelErr
	}
	if len(f.labels) == 0 {
		return nil, nil
	}
	data := f.labels[0]
	f.labels = f.labels[1:]
	return data, nil
}

func (f *fakeCourier) IssuePickupList(_ context.Context, _ time.Time) (*processors.PickupListResult, error) {
	f.mu.Lock()
	f.pickupCalls++
	gate := f.pickupGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.pickupErr != nil {
		return nil, f.pickupErr
	}
	return f.pickup, nil
}

func (f *fakeCourier) FetchPickupListPDF(_ context.Context, _ string, _ time.Time) ([]byte, error) {
	return f.pickupPDF, nil
}

func (f *fakeCourier) DeleteVoucher(_ context.Context, voucherNo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, voucherNo)
	return nil
}

func (f *fakeCourier) Process(_ context.Context, _ string) (*processors.CarrierTrackingResults, error) {
	return f.tracking, f.trackingErr
}

type fixture struct {
	courier   *fakeCourier
	repo      *repositories.Repository
	fs        afero.Fs
	lifecycle *Lifecycle
	sleeps    []time.Duration
}

func newFixture(t *testing.T, courier *fakeCourier) *fixture {
	t.Helper()

	logger := zap.NewNop()
	db, err := core.OpenDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)
	repo := repositories.NewRepository(db, logger)
	require.NoError(t, repo.Migrate())

	f := &fixture{courier: courier, repo: repo, fs: afero.NewMemMapFs()}
	f.lifecycle = NewLifecycle(logger, courier, repo, NewLabelStore(f.fs, "labels"),
		WithSleep(func(_ context.Context, d time.Duration) error {
			f.sleeps = append(f.sleeps, d)
			return nil
		}),
	)
	return f
}
