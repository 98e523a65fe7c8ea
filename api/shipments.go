package api

import (
	"net/http"
	"strconv"
	"time"

	"courier-bridge-service/workers/shipments"
	"courier-bridge-service/workers/shipments/models"
	"courier-bridge-service/workers/shipments/repositories"
	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

func shipmentID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err
}

func optionalBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func optionalDate(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Server) listShipments(c echo.Context) error {
	f := repositories.ShipmentFilter{
		Source:       models.ShipmentSource(c.QueryParam("source")),
		Status:       models.ShipmentStatus(c.QueryParam("status")),
		PickupListNo: c.QueryParam("pickup_list_no"),
	}

	var err error
	if f.From, err = optionalDate(c, "from"); err != nil {
		return badRequest(c, "from must be YYYY-MM-DD")
	}
	if f.To, err = optionalDate(c, "to"); err != nil {
		return badRequest(c, "to must be YYYY-MM-DD")
	}
	if f.To != nil {
		// inclusive day
		end := f.To.AddDate(0, 0, 1)
		f.To = &end
	}
	if f.HasVoucher, err = optionalBool(c, "has_voucher"); err != nil {
		return badRequest(c, "has_voucher must be a boolean")
	}
	if f.HasLabel, err = optionalBool(c, "has_label"); err != nil {
		return badRequest(c, "has_label must be a boolean")
	}
	if raw := c.QueryParam("order_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid order_id")
		}
		f.OrderID = &id
	}

	list, err := s.repo.ListShipments(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) getShipment(c echo.Context) error {
	id, err := shipmentID(c)
	if err != nil {
		return badRequest(c, "invalid shipment id")
	}
	sh, err := s.repo.GetShipment(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sh)
}

func (s *Server) getShipmentByVoucher(c echo.Context) error {
	sh, err := s.repo.GetShipmentByVoucher(c.Request().Context(), c.Param("voucher"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sh)
}

func (s *Server) deleteShipment(c echo.Context) error {
	id, err := shipmentID(c)
	if err != nil {
		return badRequest(c, "invalid shipment id")
	}
	if err := s.repo.DeleteShipment(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) createManual(c echo.Context) error {
	createVoucher := true
	if raw := c.QueryParam("create_voucher"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "create_voucher must be a boolean")
		}
		createVoucher = b
	}

	var entry shipments.ManualEntry
	if err := c.Bind(&entry); err != nil {
		return badRequest(c, "invalid request body")
	}

	out, err := s.lifecycle.SaveManual(c.Request().Context(), entry, createVoucher)
	if err != nil {
		if out != nil {
			// voucher granted but not stored locally
			status, body := errorStatus(err)
			return c.JSON(status, map[string]any{"error": body.Error, "result": out})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) retryLabel(c echo.Context) error {
	id, err := shipmentID(c)
	if err != nil {
		return badRequest(c, "invalid shipment id")
	}
	out, err := s.lifecycle.RetryLabel(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) cancelVoucher(c echo.Context) error {
	id, err := shipmentID(c)
	if err != nil {
		return badRequest(c, "invalid shipment id")
	}
	if err := s.lifecycle.CancelVoucher(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) trackShipment(c echo.Context) error {
	id, err := shipmentID(c)
	if err != nil {
		return badRequest(c, "invalid shipment id")
	}
	res, err := s.lifecycle.Track(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
