package api

import (
	"errors"
	"net/http"

	"courier-bridge-service/workers/shipments"
	"courier-bridge-service/workers/shipments/processors"
	"courier-bridge-service/workers/shipments/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type errorPayload struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Field    string   `json:"field,omitempty"`
	Vouchers []string `json:"vouchers,omitempty"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// errorStatus maps lifecycle, store and courier errors to a status and a
// response body. Courier messages are passed through unchanged.
func errorStatus(err error) (int, ErrorResponse) {
	var (
		fieldErr  *shipments.FieldError
		unprinted *processors.UnprintedVouchersError
	)
	switch {
	case errors.As(err, &fieldErr):
		resp := NewErrorResponse("invalid_input", fieldErr.Message)
		resp.Error.Field = fieldErr.Field
		return http.StatusBadRequest, resp
	case errors.As(err, &unprinted):
		resp := NewErrorResponse("unprinted_vouchers", unprinted.Message)
		resp.Error.Vouchers = unprinted.Vouchers
		return http.StatusConflict, resp
	case errors.Is(err, processors.ErrAuth):
		return http.StatusBadGateway, NewErrorResponse("courier_auth", err.Error())
	case errors.Is(err, processors.ErrRateLimited):
		return http.StatusTooManyRequests, NewErrorResponse("courier_rate_limited", err.Error())
	case errors.Is(err, processors.ErrUnavailable):
		return http.StatusServiceUnavailable, NewErrorResponse("courier_unavailable", err.Error())
	case errors.Is(err, processors.ErrValidation):
		return http.StatusBadRequest, NewErrorResponse("courier_validation", err.Error())
	case errors.Is(err, shipments.ErrConflict), errors.Is(err, repositories.ErrHasVoucher):
		return http.StatusConflict, NewErrorResponse("conflict", err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, NewErrorResponse("not_found", "not found")
	default:
		return http.StatusInternalServerError, NewErrorResponse("internal", err.Error())
	}
}

func writeError(c echo.Context, err error) error {
	status, body := errorStatus(err)
	return c.JSON(status, body)
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", message))
}
