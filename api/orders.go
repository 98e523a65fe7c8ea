package api

import (
	"net/http"

	"courier-bridge-service/workers/storefront/woocommerce"
	"github.com/labstack/echo/v4"
)

type orderRow struct {
	woocommerce.Order
	VoucherNo string `json:"voucherNo,omitempty"`
}

func (s *Server) listOrders(c echo.Context) error {
	if s.orders == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("storefront_disabled", "no store is configured"))
	}

	orders := s.orders.ProcessingOrders()
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	vouchers, err := s.repo.OrdersWithVoucher(c.Request().Context(), ids)
	if err != nil {
		return writeError(c, err)
	}

	rows := make([]orderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderRow{Order: o, VoucherNo: vouchers[o.ID]})
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *Server) createOrderVouchers(c echo.Context) error {
	if s.orders == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("storefront_disabled", "no store is configured"))
	}

	var body struct {
		OrderIDs []int64 `json:"orderIds"`
	}
	if err := c.Bind(&body); err != nil || len(body.OrderIDs) == 0 {
		return badRequest(c, "orderIds is required")
	}

	ctx := c.Request().Context()
	orders, err := s.orders.Orders(ctx, body.OrderIDs)
	if err != nil {
		return c.JSON(http.StatusBadGateway, NewErrorResponse("storefront", err.Error()))
	}
	results, err := s.lifecycle.CreateVouchersForOrders(ctx, orders)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}
