package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SystemHandler answers the informational endpoints.
type SystemHandler struct{}

func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// Root godoc
// @Summary  Welcome message
// @Tags     system
// @Produce  json
// @Success  200  {object}  messageResponse
// @Router   / [get]
func (h *SystemHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Welcome to AIris-Cab API"})
}

// Deploy godoc
// @Summary  Deployment marker
// @Tags     system
// @Produce  json
// @Success  200  {object}  statusResponse
// @Router   /deploy [get]
func (h *SystemHandler) Deploy(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{Status: "deployed"})
}
