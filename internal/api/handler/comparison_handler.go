package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/airiscab/ridefare/internal/core/ports"
)

// ComparisonHandler serves fare comparisons.
type ComparisonHandler struct {
	service ports.ComparisonService
}

func NewComparisonHandler(service ports.ComparisonService) *ComparisonHandler {
	return &ComparisonHandler{service: service}
}

// Compare godoc
// @Summary      Compare ride prices for a route
// @Description  Prices every listed tier and flags the cheapest one that fits the group as recommended.
// @Tags         prices
// @Accept       json
// @Produce      json
// @Param        body  body      compareRequest  true  "Route and group size"
// @Success      200   {array}   estimateResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /compare-prices [post]
func (h *ComparisonHandler) Compare(c echo.Context) error {
	var req compareRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	estimates, err := h.service.Compare(c.Request().Context(), ports.CompareInput{
		Pickup:         req.PickupAddress,
		Dropoff:        req.DropoffAddress,
		PassengerCount: req.PassengerCount,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toEstimateResponses(estimates))
}
