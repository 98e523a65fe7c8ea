package processors

import (
	"context"
	"time"
)

// CarrierTrackingProcessor reports the courier-side state of one voucher.
type CarrierTrackingProcessor interface {
	Process(ctx context.Context, trackingNumber string) (*CarrierTrackingResults, error)
}

// Courier is everything the shipment lifecycle needs from a courier. Every
// call blocks on the network and is safe to call from several goroutines.
type Courier interface {
	CarrierTrackingProcessor
	CreateVoucher(ctx context.Context, req VoucherRequest) (*Voucher, error)
	FetchLabel(ctx context.Context, voucherNo string, format LabelFormat) ([]byte, error)
	IssuePickupList(ctx context.Context, pickupDate time.Time) (*PickupListResult, error)
	FetchPickupListPDF(ctx context.Context, pickupListNo string, pickupDate time.Time) ([]byte, error)
	DeleteVoucher(ctx context.Context, voucherNo string) error
}

type LabelFormat int

const (
	LabelThermal LabelFormat = 1
	LabelLaserA4 LabelFormat = 2
)

func (f LabelFormat) String() string {
	switch f {
	case LabelThermal:
		return "thermal"
	case LabelLaserA4:
		return "laser"
	default:
		return "unknown"
	}
}

type Voucher struct {
	VoucherNo       string
	ReturnVoucherNo string
}

type PickupListResult struct {
	PickupListNo   string
	UnprintedCount int
}
