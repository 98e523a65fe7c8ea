package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Server) listPickupLists(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	lists, err := s.repo.ListPickupLists(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, lists)
}

func (s *Server) createPickupList(c echo.Context) error {
	var body struct {
		Date string `json:"date"`
	}
	_ = c.Bind(&body)

	day := s.now()
	if body.Date != "" {
		t, err := time.ParseInLocation(dateLayout, body.Date, time.Local)
		if err != nil {
			return badRequest(c, "date must be YYYY-MM-DD")
		}
		day = t
	}

	out, err := s.lifecycle.CreatePickupList(c.Request().Context(), day)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) getPickupList(c echo.Context) error {
	ctx := c.Request().Context()
	no := c.Param("no")
	list, err := s.repo.GetPickupList(ctx, no)
	if err != nil {
		return writeError(c, err)
	}
	members, err := s.repo.PickupListShipments(ctx, no)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"list": list, "shipments": members})
}

func (s *Server) exportPickupListPDF(c echo.Context) error {
	p, err := s.lifecycle.ExportPickupListPDF(c.Request().Context(), c.Param("no"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"path": p})
}

func (s *Server) completePickup(c echo.Context) error {
	if err := s.lifecycle.CompletePickup(c.Request().Context(), c.Param("no")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
