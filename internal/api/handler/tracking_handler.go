package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/airiscab/ridefare/internal/core/ports"
)

// TrackingHandler handles HTTP requests for price alerts.
type TrackingHandler struct {
	service ports.TrackingService
}

func NewTrackingHandler(service ports.TrackingService) *TrackingHandler {
	return &TrackingHandler{service: service}
}

// Track godoc
// @Summary      Track a route until its price reaches a target
// @Description  Stores the route, checks it once immediately and then on every tracking interval. An SMS is sent once, when the cheapest eligible fare is at or below target_price.
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Param        body  body      trackRouteRequest  true  "Route, phone number and target price"
// @Success      200   {object}  trackRouteResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /track-route [post]
func (h *TrackingHandler) Track(c echo.Context) error {
	var req trackRouteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Track(c.Request().Context(), ports.TrackRouteInput{
		Pickup:         req.PickupAddress,
		Dropoff:        req.DropoffAddress,
		PassengerCount: req.PassengerCount,
		PhoneNumber:    req.PhoneNumber,
		TargetPrice:    req.TargetPrice,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, trackRouteResponse{
		Message: "Route tracking started",
		RouteID: res.RouteID,
	})
}

// ListByPhone godoc
// @Summary      List the routes tracked for a phone number
// @Tags         tracking
// @Produce      json
// @Param        phone_number  path      string  true  "E.164 phone number, URL-encoded (%2B15551234567)"
// @Success      200           {array}   trackedRouteResponse
// @Failure      400           {object}  errorResponse
// @Failure      500           {object}  errorResponse
// @Router       /tracked-routes/{phone_number} [get]
func (h *TrackingHandler) ListByPhone(c echo.Context) error {
	phone := c.Param("phone_number")
	if unescaped, err := url.PathUnescape(phone); err == nil {
		phone = unescaped
	}

	routes, err := h.service.ListByPhone(c.Request().Context(), phone)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrackedRouteResponses(routes))
}

// Untrack godoc
// @Summary      Stop tracking a route and delete it
// @Description  Recorded price history is kept.
// @Tags         tracking
// @Produce      json
// @Param        route_id  path      int  true  "Route id"
// @Success      200       {object}  messageResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /tracked-routes/{route_id} [delete]
func (h *TrackingHandler) Untrack(c echo.Context) error {
	id, err := routeIDParam(c)
	if err != nil {
		return err
	}
	if err := h.service.Untrack(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Route tracking stopped and deleted"})
}

// History godoc
// @Summary      Price history of a route
// @Description  Newest first. Defaults to 100 entries, capped at 1000.
// @Tags         tracking
// @Produce      json
// @Param        route_id  path      int  true   "Route id"
// @Param        limit     query     int  false  "Maximum number of entries"
// @Success      200       {array}   priceHistoryResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /price-history/{route_id} [get]
func (h *TrackingHandler) History(c echo.Context) error {
	id, err := routeIDParam(c)
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
	}

	entries, err := h.service.History(c.Request().Context(), id, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPriceHistoryResponses(entries))
}

func routeIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("route_id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "route_id must be a positive integer")
	}
	return id, nil
}
