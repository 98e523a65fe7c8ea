package shipments

import (
	"context"
	"fmt"
	"strings"

	"courier-bridge-service/workers/shipments/models"
	"courier-bridge-service/workers/shipments/processors"
	"courier-bridge-service/workers/storefront/woocommerce"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const orderWeight = 1.0

type OrderResult struct {
	OrderID   int64  `json:"orderId"`
	VoucherNo string `json:"voucherNo,omitempty"`
	PDFPath   string `json:"pdfPath,omitempty"`
	Skipped   bool   `json:"skipped,omitempty"`
	Warning   string `json:"warning,omitempty"`
	Error     string `json:"error,omitempty"`
}

// OrderRequest builds a voucher request from a store order. The shipping
// address wins over billing when present. Problems that the courier may
// still accept come back as warnings.
func OrderRequest(o woocommerce.Order) (processors.VoucherRequest, []string, error) {
	addr := o.Billing
	if strings.TrimSpace(o.Shipping.Address1) != "" {
		addr = o.Shipping
	}
	phone := o.Shipping.Phone
	if phone == "" {
		phone = o.Billing.Phone
	}

	street, number := SplitAddress(addr.Address1)
	req := processors.VoucherRequest{
		RecipientName:    addr.FullName(),
		RecipientCompany: addr.Company,
		Street:           street,
		StreetNumber:     number,
		Zipcode:          strings.TrimSpace(addr.Postcode),
		Region:           strings.TrimSpace(addr.City),
		Floor:            strings.TrimSpace(addr.Address2),
		Phone:            NormalizePhone(phone),
		Email:            o.Billing.Email,
		Weight:           orderWeight,
		Pieces:           1,
		DeliveryNotes:    o.CustomerNote,
		Reference1:       fmt.Sprintf("Order #%d", o.ID),
	}

	if o.PaymentMethod == woocommerce.PaymentMethodCOD {
		total, err := decimal.NewFromString(o.Total)
		if err != nil {
			return req, nil, fmt.Errorf("order %d: invalid total %q: %w", o.ID, o.Total, err)
		}
		req.CODAmount = total.Round(2)
	}

	var warnings []string
	if !ValidZipcode(req.Zipcode) {
		warnings = append(warnings, fmt.Sprintf("zipcode %q is not 5 digits", req.Zipcode))
	}
	if len(req.Phone) != 10 {
		warnings = append(warnings, fmt.Sprintf("phone %q is not 10 digits", req.Phone))
	}
	return req, warnings, nil
}

// CreateVouchersForOrders runs the voucher flow for each order in turn.
// Orders that already have a voucher are skipped. One failing order does
// not stop the rest.
func (l *Lifecycle) CreateVouchersForOrders(ctx context.Context, orders []woocommerce.Order) ([]OrderResult, error) {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	existing, err := l.repo.OrdersWithVoucher(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check existing vouchers: %w", err)
	}

	results := make([]OrderResult, 0, len(orders))
	for _, o := range orders {
		res := OrderResult{OrderID: o.ID}

		if voucherNo, ok := existing[o.ID]; ok {
			res.VoucherNo = voucherNo
			res.Skipped = true
			results = append(results, res)
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		req, warnings, err := OrderRequest(o)
		if err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		if len(warnings) > 0 {
			detail := fmt.Sprintf("Order #%d: %s", o.ID, strings.Join(warnings, "; "))
			l.logger.Warn("Order data failed validation, sending anyway",
				zap.Int64("order_id", o.ID),
				zap.Strings("warnings", warnings),
			)
			l.repo.LogActivity(ctx, models.ActionOrderDataWarning, nil, detail)
			res.Warning = detail
		}

		orderID := o.ID
		out, err := l.CreateVoucherWithLabel(ctx, req, ShipmentMeta{
			Source:  models.SourceStore,
			OrderID: &orderID,
			Notes:   fmt.Sprintf("WooCommerce Order #%d", o.ID),
		})
		if out != nil {
			existing[o.ID] = out.VoucherNo
			res.VoucherNo = out.VoucherNo
			res.PDFPath = out.PDFPath
			if out.Warning != "" {
				res.Warning = strings.TrimPrefix(res.Warning+"; "+out.Warning, "; ")
			}
		}
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}
