package acs

import (
	"context"
	"fmt"

	"courier-bridge-service/workers/shipments/processors"
)

type ResolvedAddress struct {
	Street    string
	Number    string
	Zipcode   string
	Area      string
	StationID string
	BranchID  string
	Latitude  float64
	Longitude float64
	IsRemote  bool
}

// ValidateAddress resolves a free-text address against the courier's
// address book.
func (c *Client) ValidateAddress(ctx context.Context, address string) (*ResolvedAddress, error) {
	out, err := c.Invoke(ctx, MethodAddressValidation, map[string]any{
		"Address":  address,
		"Language": c.config.Language,
	})
	if err != nil {
		return nil, err
	}

	var v addressValidationOutput
	ok, err := out.firstValue(&v)
	if err != nil {
		return nil, fmt.Errorf("decode address validation: %w", err)
	}
	if !ok || len(v.ObjectOutput) == 0 {
		return nil, valueError(MethodAddressValidation, "", "Address validation failed")
	}

	a := v.ObjectOutput[0]
	return &ResolvedAddress{
		Street:    a.Street.String(),
		Number:    a.Number.String(),
		Zipcode:   a.Zipcode.String(),
		Area:      a.Area.String(),
		StationID: a.StationID.String(),
		BranchID:  a.BranchID.String(),
		Latitude:  a.Latitude.Float(),
		Longitude: a.Longitude.Float(),
		IsRemote:  a.Inaccesible.Int() == 1,
	}, nil
}

// Ping checks credentials and connectivity with a cheap address lookup.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ValidateAddress(ctx, "ΡΟΜΒΗΣ 25 17778")
	return err
}

var _ processors.Courier = (*Client)(nil)
