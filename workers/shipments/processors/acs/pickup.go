package acs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"courier-bridge-service/workers/shipments/processors"
	"go.uber.org/zap"
)

// IssuePickupList finalises every voucher created since the last list for
// pickupDate. Voucher barcodes are not scannable by the courier before this.
func (c *Client) IssuePickupList(ctx context.Context, pickupDate time.Time) (*processors.PickupListResult, error) {
	out, err := c.Invoke(ctx, MethodIssuePickupList, map[string]any{
		"Pickup_Date": pickupDate.Format(dateLayout),
		"MyData":      0,
		"Language":    c.config.Language,
	})
	if err != nil {
		return nil, err
	}

	var v pickupListOutput
	ok, err := out.firstValue(&v)
	if err != nil {
		return nil, fmt.Errorf("decode pickup list output: %w", err)
	}

	if ok && v.PickupListNo != "" {
		return &processors.PickupListResult{
			PickupListNo:   v.PickupListNo.String(),
			UnprintedCount: v.UnprintedFound.Int(),
		}, nil
	}

	if ok && v.ErrorMessage != "" {
		var unprinted []string
		for _, raw := range out.TableOutput.Data {
			var row unprintedRow
			if err := json.Unmarshal(raw, &row); err != nil {
				continue
			}
			if row.UnprintedVouchers != "" {
				unprinted = append(unprinted, row.UnprintedVouchers.String())
			}
		}
		if len(unprinted) > 0 {
			c.logger.Warn("Pickup list blocked by unprinted vouchers", zap.Strings("vouchers", unprinted))
			return nil, &processors.UnprintedVouchersError{Message: v.ErrorMessage.String(), Vouchers: unprinted}
		}
		return nil, valueError(MethodIssuePickupList, v.ErrorMessage.String(), "")
	}

	return nil, valueError(MethodIssuePickupList, "", "Failed to create pickup list")
}

func (c *Client) FetchPickupListPDF(ctx context.Context, pickupListNo string, pickupDate time.Time) ([]byte, error) {
	out, err := c.Invoke(ctx, MethodPrintPickupList, map[string]any{
		"Mass_Number": pickupListNo,
		"Pickup_Date": pickupDate.Format(dateLayout),
		"Language":    c.config.Language,
	})
	if err != nil {
		return nil, err
	}

	notReady := &processors.CourierError{
		Kind:    processors.ErrUnavailable,
		Method:  MethodPrintPickupList,
		Message: "Failed to print pickup list",
	}
	if len(out.ObjectOutput) == 0 {
		return nil, notReady
	}

	var encoded string
	if err := json.Unmarshal(out.ObjectOutput[0], &encoded); err != nil || encoded == "" {
		return nil, notReady
	}

	pdf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode pickup list %s: %w", pickupListNo, err)
	}
	return pdf, nil
}
