package acs

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type request struct {
	Alias      string         `json:"ACSAlias"`
	Parameters map[string]any `json:"ACSInputParameters"`
}

type apiResponse struct {
	HasError     bool   `json:"ACSExecution_HasError"`
	ErrorMessage string `json:"ACSExecutionErrorMessage"`
	Output       Output `json:"ACSOutputResponce"`
}

// Output is the method-dependent part of a response. Only one of the
// three shapes is normally populated.
type Output struct {
	ValueOutput  []json.RawMessage `json:"ACSValueOutput"`
	TableOutput  TableOutput       `json:"ACSTableOutput"`
	ObjectOutput []json.RawMessage `json:"ACSObjectOutput"`
}

type TableOutput struct {
	Data []json.RawMessage `json:"Table_Data"`
}

// firstValue decodes ACSValueOutput[0] into v and reports whether it existed.
func (o Output) firstValue(v any) (bool, error) {
	if len(o.ValueOutput) == 0 {
		return false, nil
	}
	return true, json.Unmarshal(o.ValueOutput[0], v)
}

// flexString accepts JSON strings, numbers, booleans and null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	*f = flexString(string(b))
	return nil
}

func (f flexString) String() string {
	return string(f)
}

func (f flexString) Int() int {
	n, _ := strconv.Atoi(string(f))
	return n
}

func (f flexString) Float() float64 {
	n, _ := strconv.ParseFloat(string(f), 64)
	return n
}

func (f flexString) Bool() bool {
	switch strings.ToLower(string(f)) {
	case "1", "true", "y", "yes":
		return true
	}
	return false
}

type createVoucherOutput struct {
	VoucherNo       flexString `json:"Voucher_No"`
	VoucherNoReturn flexString `json:"Voucher_No_Return"`
	ErrorMessage    flexString `json:"Error_Message"`
}

type pickupListOutput struct {
	PickupListNo   flexString `json:"PickupList_No"`
	UnprintedFound flexString `json:"Unprinted_Found"`
	ErrorMessage   flexString `json:"Error_Message"`
}

type unprintedRow struct {
	UnprintedVouchers flexString `json:"Unprinted_Vouchers"`
}

type errorOutput struct {
	ErrorMessage flexString `json:"Error_Message"`
}

type trackingSummaryRow struct {
	VoucherNo          flexString `json:"voucher_no"`
	ShipmentStatus     flexString `json:"shipment_status"`
	DeliveryFlag       flexString `json:"delivery_flag"`
	ReturnedFlag       flexString `json:"returned_flag"`
	DeliveryDate       flexString `json:"delivery_date"`
	DeliveryInfo       flexString `json:"delivery_info"`
	Recipient          flexString `json:"recipient"`
	StationOrigin      flexString `json:"acs_station_origin_descr"`
	StationDestination flexString `json:"acs_station_destination_descr"`
}

type addressValidationOutput struct {
	ObjectOutput []resolvedAddress `json:"ACSObjectOutput"`
}

type resolvedAddress struct {
	Street      flexString `json:"Resolved_Street"`
	Number      flexString `json:"Resolved_Street_Num"`
	Zipcode     flexString `json:"Resolved_Zip"`
	Area        flexString `json:"Resolved_Area"`
	StationID   flexString `json:"Resolved_Station_ID"`
	BranchID    flexString `json:"Resolved_Branch_ID"`
	Latitude    flexString `json:"Resolved_Lat"`
	Longitude   flexString `json:"Resolved_Long"`
	Inaccesible flexString `json:"Resolved_As_Inaccesible_Area_With_Cost"`
}
