package acs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"courier-bridge-service/workers/shipments/processors"
)

var deliveryDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Process returns the latest tracking summary for a voucher.
func (c *Client) Process(ctx context.Context, trackingNumber string) (*processors.CarrierTrackingResults, error) {
	out, err := c.Invoke(ctx, MethodTrackingSummary, map[string]any{
		"Voucher_No": trackingNumber,
		"Language":   c.config.Language,
	})
	if err != nil {
		return nil, err
	}

	if len(out.TableOutput.Data) == 0 {
		return nil, &processors.CourierError{
			Kind:    processors.ErrUnavailable,
			Method:  MethodTrackingSummary,
			Message: "No tracking data available",
		}
	}

	var row trackingSummaryRow
	if err := json.Unmarshal(out.TableOutput.Data[0], &row); err != nil {
		return nil, fmt.Errorf("decode tracking summary: %w", err)
	}

	now := c.now()
	voucherNo := row.VoucherNo.String()
	if voucherNo == "" {
		voucherNo = trackingNumber
	}

	return &processors.CarrierTrackingResults{
		TrackingNumber:     voucherNo,
		Status:             row.ShipmentStatus.String(),
		Delivered:          row.DeliveryFlag.Bool(),
		Returned:           row.ReturnedFlag.Bool(),
		DeliveryDate:       parseDeliveryDate(row.DeliveryDate.String()),
		DeliveryInfo:       row.DeliveryInfo.String(),
		Recipient:          row.Recipient.String(),
		StationOrigin:      row.StationOrigin.String(),
		StationDestination: row.StationDestination.String(),
		LastCheckedAt:      &now,
	}, nil
}

func parseDeliveryDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range deliveryDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
