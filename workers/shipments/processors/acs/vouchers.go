package acs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"courier-bridge-service/workers/shipments/processors"
	"go.uber.org/zap"
)

const (
	chargeSenderPays = 2
	codPaymentCash   = 0
	country          = "GR"
)

func (c *Client) CreateVoucher(ctx context.Context, r processors.VoucherRequest) (*processors.Voucher, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	params := map[string]any{
		"Pickup_Date": c.today(),
		"Sender":      c.config.SenderName,

		"Recipient_Name":           r.RecipientName,
		"Recipient_Address":        r.Street,
		"Recipient_Address_Number": r.StreetNumber,
		"Recipient_Zipcode":        r.Zipcode,
		"Recipient_Region":         r.Region,
		"Recipient_Country":        country,
		"Recipient_Phone":          r.Phone,
		"Recipient_Cell_Phone":     r.CellPhone,
		"Recipient_Email":          r.Email,
		"Recipient_Floor":          r.Floor,
		"Recipient_Company_Name":   r.RecipientCompany,

		"Billing_Code":  c.config.BillingCode,
		"Charge_Type":   chargeSenderPays,
		"Item_Quantity": r.EffectivePieces(),
		"Weight":        r.EffectiveWeight(),

		"Cod_Ammount":    r.CODAmount.InexactFloat64(),
		"Delivery_Notes": r.DeliveryNotes,
		"Reference_Key1": r.Reference1,
		"Reference_Key2": r.Reference2,
		"Language":       c.config.Language,
	}

	if r.LengthCm > 0 {
		params["Dimension_X_In_Cm"] = r.LengthCm
	}
	if r.WidthCm > 0 {
		params["Dimension_Y_in_Cm"] = r.WidthCm
	}
	if r.HeightCm > 0 {
		params["Dimension_Z_in_Cm"] = r.HeightCm
	}
	if r.CODAmount.IsPositive() {
		params["Cod_Payment_Way"] = codPaymentCash
	}
	if products := r.DeliveryProducts(); len(products) > 0 {
		params["Acs_Delivery_Products"] = strings.Join(products, ",")
	}
	if r.StationCode != "" {
		params["Acs_Station_Destination"] = r.StationCode
	}
	branch := r.StationBranchID
	if branch <= 0 {
		branch = 1
	}
	params["Acs_Station_Branch_Destination"] = branch

	out, err := c.Invoke(ctx, MethodCreateVoucher, params)
	if err != nil {
		return nil, err
	}

	var v createVoucherOutput
	ok, err := out.firstValue(&v)
	if err != nil {
		return nil, fmt.Errorf("decode voucher output: %w", err)
	}
	if !ok || v.VoucherNo == "" {
		return nil, valueError(MethodCreateVoucher, v.ErrorMessage.String(), "Voucher creation failed")
	}

	c.logger.Info("Voucher created", zap.String("voucher_no", v.VoucherNo.String()))

	return &processors.Voucher{
		VoucherNo:       v.VoucherNo.String(),
		ReturnVoucherNo: v.VoucherNoReturn.String(),
	}, nil
}

// FetchLabel downloads the voucher PDF. Labels are rendered asynchronously
// after creation, so an empty answer right after CreateVoucher comes back as
// ErrUnavailable and is worth retrying.
func (c *Client) FetchLabel(ctx context.Context, voucherNo string, format processors.LabelFormat) ([]byte, error) {
	out, err := c.Invoke(ctx, MethodPrintVoucher, map[string]any{
		"Voucher_No":     voucherNo,
		"Print_Type":     int(format),
		"Start_Position": 1,
		"Language":       c.config.Language,
	})
	if err != nil {
		return nil, err
	}

	notReady := &processors.CourierError{
		Kind:    processors.ErrUnavailable,
		Method:  MethodPrintVoucher,
		Message: fmt.Sprintf("label for %s not available yet", voucherNo),
	}

	if len(out.ObjectOutput) == 0 {
		return nil, notReady
	}

	// {"<voucher_no>": "<base64 pdf>"}
	var byVoucher map[string]*string
	if err := json.Unmarshal(out.ObjectOutput[0], &byVoucher); err != nil {
		return nil, notReady
	}

	encoded := byVoucher[voucherNo]
	if encoded == nil && len(byVoucher) == 1 {
		for _, v := range byVoucher {
			encoded = v
		}
	}
	if encoded == nil || *encoded == "" {
		return nil, notReady
	}

	pdf, err := base64.StdEncoding.DecodeString(*encoded)
	if err != nil {
		return nil, fmt.Errorf("decode label for %s: %w", voucherNo, err)
	}
	if len(pdf) == 0 {
		return nil, notReady
	}
	return pdf, nil
}

// DeleteVoucher cancels a voucher. The courier refuses once the voucher is
// part of a pickup list.
func (c *Client) DeleteVoucher(ctx context.Context, voucherNo string) error {
	out, err := c.Invoke(ctx, MethodDeleteVoucher, map[string]any{
		"Voucher_No": voucherNo,
		"Language":   c.config.Language,
	})
	if err != nil {
		return err
	}

	var v errorOutput
	if _, err := out.firstValue(&v); err != nil {
		return fmt.Errorf("decode delete output: %w", err)
	}
	if v.ErrorMessage != "" {
		return valueError(MethodDeleteVoucher, v.ErrorMessage.String(), "")
	}
	return nil
}
