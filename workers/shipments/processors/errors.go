package processors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation  = errors.New("courier rejected request")
	ErrAuth        = errors.New("courier authentication failed")
	ErrRateLimited = errors.New("courier rate limit exceeded")
	ErrUnavailable = errors.New("courier temporarily unavailable")
)

// CourierError keeps the courier's own wording, which is what an operator
// needs to fix a bad field.
type CourierError struct {
	Kind    error
	Method  string
	Message string
}

func (e *CourierError) Error() string {
	return e.Message
}

func (e *CourierError) Unwrap() error {
	return e.Kind
}

// Retryable reports whether err is worth another attempt after a pause.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}

// UnprintedVouchersError is returned when a pickup list cannot be issued
// because some vouchers never had their label printed.
type UnprintedVouchersError struct {
	Message  string
	Vouchers []string
}

func (e *UnprintedVouchersError) Error() string {
	if len(e.Vouchers) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (unprinted: %s)", e.Message, strings.Join(e.Vouchers, ", "))
}

func (e *UnprintedVouchersError) Unwrap() error {
	return ErrValidation
}
