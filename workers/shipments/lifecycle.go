package shipments

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"courier-bridge-service/workers/shipments/models"
	"courier-bridge-service/workers/shipments/processors"
	"courier-bridge-service/workers/shipments/repositories"
	"go.uber.org/zap"
)

var (
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// FieldError reports a locally rejected input field. No courier call is
// made once one is returned.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

// Archiver keeps an off-site copy of generated PDFs.
type Archiver interface {
	Archive(ctx context.Context, name string, data []byte) (string, error)
}

// Lifecycle drives a shipment from voucher request to pickup. It owns the
// label fallback sequence and serialises pickup-list batching.
type Lifecycle struct {
	logger     *zap.Logger
	courier    processors.Courier
	repo       *repositories.Repository
	labels     *LabelStore
	archive    Archiver
	retryDelay time.Duration
	pickupTime string
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time

	batchMu sync.Mutex
}

type LifecycleOption func(*Lifecycle)

func WithArchive(a Archiver) LifecycleOption {
	return func(l *Lifecycle) { l.archive = a }
}

func WithRetryDelay(d time.Duration) LifecycleOption {
	return func(l *Lifecycle) { l.retryDelay = d }
}

func WithPickupTime(hhmm string) LifecycleOption {
	return func(l *Lifecycle) { l.pickupTime = hhmm }
}

func WithSleep(fn func(ctx context.Context, d time.Duration) error) LifecycleOption {
	return func(l *Lifecycle) { l.sleep = fn }
}

func WithClock(now func() time.Time) LifecycleOption {
	return func(l *Lifecycle) { l.now = now }
}

func NewLifecycle(logger *zap.Logger, courier processors.Courier, repo *repositories.Repository, labels *LabelStore, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		logger:     logger.Named("lifecycle"),
		courier:    courier,
		repo:       repo,
		labels:     labels,
		retryDelay: 2 * time.Second,
		pickupTime: "10:00",
		sleep:      sleepContext,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ShipmentMeta is the local bookkeeping stored next to a voucher.
type ShipmentMeta struct {
	Source          models.ShipmentSource
	OrderID         *int64
	ManualReference string
	Notes           string
}

type VoucherOutcome struct {
	ShipmentID uint   `json:"shipmentId"`
	VoucherNo  string `json:"voucherNo,omitempty"`
	PDFPath    string `json:"pdfPath,omitempty"`
	Warning    string `json:"warning,omitempty"`
}

func newShipment(req processors.VoucherRequest, meta ShipmentMeta) *models.Shipment {
	return &models.Shipment{
		Source:                 meta.Source,
		OrderID:                meta.OrderID,
		ManualReference:        meta.ManualReference,
		RecipientName:          req.RecipientName,
		RecipientAddress:       req.Street,
		RecipientAddressNumber: req.StreetNumber,
		RecipientCity:          req.Region,
		RecipientZipcode:       req.Zipcode,
		RecipientPhone:         req.Phone,
		RecipientEmail:         req.Email,
		Weight:                 req.EffectiveWeight(),
		Pieces:                 req.EffectivePieces(),
		CODAmount:              req.CODAmount,
		Notes:                  meta.Notes,
		Status:                 models.StatusDraft,
	}
}

// CreateVoucherWithLabel requests a voucher, tries to save its label and
// persists the shipment as READY. A label failure does not fail the call;
// the outcome carries a warning and no PDF path instead. When the courier
// refuses the voucher nothing is written locally.
func (l *Lifecycle) CreateVoucherWithLabel(ctx context.Context, req processors.VoucherRequest, meta ShipmentMeta) (*VoucherOutcome, error) {
	log := l.logger.With(
		zap.String("recipient", req.RecipientName),
		zap.String("source", string(meta.Source)),
	)

	voucher, err := l.courier.CreateVoucher(ctx, req)
	if err != nil {
		log.Error("Voucher creation failed", zap.Error(err))
		return nil, err
	}
	voucherNo := voucher.VoucherNo
	log = log.With(zap.String("voucher_no", voucherNo))
	log.Info("Voucher created")

	out := &VoucherOutcome{VoucherNo: voucherNo}
	pdfPath, labelErr := l.downloadLabel(ctx, voucherNo)

	// The voucher exists at the courier; record it even if ctx was cancelled
	// while waiting between label attempts.
	persistCtx := context.WithoutCancel(ctx)

	s := newShipment(req, meta)
	s.VoucherNo = &voucherNo
	s.Status = models.StatusReady
	if labelErr == nil {
		s.PDFPath = &pdfPath
		out.PDFPath = pdfPath
	}

	id, err := l.repo.AddShipment(persistCtx, s)
	if err != nil {
		log.Error("Voucher created but shipment not saved", zap.Error(err))
		return out, fmt.Errorf("voucher %s created but not saved: %w", voucherNo, err)
	}
	out.ShipmentID = id

	if labelErr != nil {
		log.Warn("Label not saved", zap.Error(labelErr))
		out.Warning = fmt.Sprintf("Voucher %s created but the label could not be downloaded: %v", voucherNo, labelErr)
		l.repo.LogActivity(persistCtx, models.ActionLabelFailed, &voucherNo, labelErr.Error())
	} else {
		l.repo.LogActivity(persistCtx, models.ActionLabelSaved, &voucherNo, pdfPath)
	}
	return out, nil
}

var labelAttempts = []struct {
	format processors.LabelFormat
	wait   bool
}{
	{processors.LabelLaserA4, false},
	{processors.LabelLaserA4, true},
	{processors.LabelThermal, false},
}

// downloadLabel tries laser, laser again after retryDelay, then thermal.
func (l *Lifecycle) downloadLabel(ctx context.Context, voucherNo string) (string, error) {
	at := l.now()
	var lastErr error
	for i, attempt := range labelAttempts {
		if attempt.wait {
			if err := l.sleep(ctx, l.retryDelay); err != nil {
				return "", err
			}
		}

		data, err := l.courier.FetchLabel(ctx, voucherNo, attempt.format)
		if err == nil {
			var p string
			p, err = l.labels.SaveLabel(voucherNo, attempt.format, data, at)
			if err == nil {
				l.archiveCopy(ctx, p, data)
				return p, nil
			}
		}

		lastErr = err
		l.logger.Warn("Label attempt failed",
			zap.String("voucher_no", voucherNo),
			zap.Int("attempt", i+1),
			zap.Stringer("format", attempt.format),
			zap.Error(err),
		)
		if errors.Is(err, processors.ErrAuth) {
			break
		}
	}
	return "", lastErr
}

func (l *Lifecycle) archiveCopy(ctx context.Context, p string, data []byte) {
	if l.archive == nil {
		return
	}
	url, err := l.archive.Archive(ctx, l.labels.Relative(p), data)
	if err != nil {
		l.logger.Warn("Archive upload failed", zap.String("path", p), zap.Error(err))
		return
	}
	l.logger.Debug("Archived", zap.String("path", p), zap.String("url", url))
}

// RetryLabel downloads the missing label of a READY shipment that already
// has a voucher.
func (l *Lifecycle) RetryLabel(ctx context.Context, shipmentID uint) (*VoucherOutcome, error) {
	s, err := l.repo.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if !s.HasVoucher() {
		return nil, fmt.Errorf("%w: shipment %d has no voucher", ErrConflict, shipmentID)
	}
	if s.Status != models.StatusReady {
		return nil, fmt.Errorf("%w: shipment %d is %s", ErrConflict, shipmentID, s.Status)
	}
	if s.HasLabel() {
		return nil, fmt.Errorf("%w: shipment %d already has a label", ErrConflict, shipmentID)
	}
	voucherNo := *s.VoucherNo

	p, err := l.downloadLabel(ctx, voucherNo)
	if err != nil {
		l.repo.LogActivity(context.WithoutCancel(ctx), models.ActionLabelFailed, &voucherNo, err.Error())
		return nil, err
	}

	if err := l.repo.UpdateShipment(ctx, shipmentID, repositories.ShipmentUpdate{PDFPath: &p}); err != nil {
		return nil, err
	}
	l.repo.LogActivity(ctx, models.ActionLabelSaved, &voucherNo, p)
	return &VoucherOutcome{ShipmentID: shipmentID, VoucherNo: voucherNo, PDFPath: p}, nil
}

// CancelVoucher deletes the voucher at the courier and turns the shipment
// back into a draft. Vouchers already in a pickup list are refused.
func (l *Lifecycle) CancelVoucher(ctx context.Context, shipmentID uint) error {
	s, err := l.repo.GetShipment(ctx, shipmentID)
	if err != nil {
		return err
	}
	if !s.HasVoucher() {
		return fmt.Errorf("%w: shipment %d has no voucher", ErrConflict, shipmentID)
	}
	if s.PickupListNo != nil && *s.PickupListNo != "" {
		return fmt.Errorf("%w: voucher %s is already in pickup list %s", ErrConflict, *s.VoucherNo, *s.PickupListNo)
	}
	voucherNo := *s.VoucherNo

	if err := l.courier.DeleteVoucher(ctx, voucherNo); err != nil {
		l.logger.Error("Voucher cancellation failed", zap.String("voucher_no", voucherNo), zap.Error(err))
		return err
	}

	draft := models.StatusDraft
	err = l.repo.UpdateShipment(context.WithoutCancel(ctx), shipmentID, repositories.ShipmentUpdate{
		Status:       &draft,
		ClearVoucher: true,
		ClearPDFPath: true,
	})
	if err != nil {
		l.logger.Error("Voucher cancelled but shipment not updated", zap.String("voucher_no", voucherNo), zap.Error(err))
		return err
	}
	l.repo.LogActivity(ctx, models.ActionVoucherCancelled, &voucherNo, fmt.Sprintf("Shipment ID: %d", shipmentID))
	return nil
}
