package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/airiscab/ridefare/internal/core/ports"
)

// CityHandler serves place-name suggestions for the address inputs.
type CityHandler struct {
	service ports.CityService
}

func NewCityHandler(service ports.CityService) *CityHandler {
	return &CityHandler{service: service}
}

// Autocomplete godoc
// @Summary      Suggest city names
// @Description  Case-insensitive substring match, at most five results. An empty query returns an empty list.
// @Tags         cities
// @Produce      json
// @Param        query  query     string  false  "Partial city name"
// @Success      200    {array}   string
// @Router       /cities/autocomplete [get]
func (h *CityHandler) Autocomplete(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Autocomplete(c.QueryParam("query")))
}
