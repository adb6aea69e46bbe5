package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/airiscab/ridefare/internal/api/handler"
	"github.com/airiscab/ridefare/internal/api/middleware"
	"github.com/airiscab/ridefare/internal/core/ports"
)

// RouterDeps holds everything the HTTP layer needs.
type RouterDeps struct {
	Comparison ports.ComparisonService
	Cities     ports.CityService
	Tracking   ports.TrackingService
	Checks     []handler.DependencyCheck

	CORSAllowOrigins []string
	// RateLimitRPS of 0 disables per-client rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// The context bounds background goroutines started for the router.
func NewRouter(ctx context.Context, deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     deps.CORSAllowOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "ridefare",
		Subsystem:  "http",
		Registerer: deps.Registerer,
	}))

	// --- Handlers ---
	systemHandler := handler.NewSystemHandler()
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks...)
	comparisonHandler := handler.NewComparisonHandler(deps.Comparison)
	cityHandler := handler.NewCityHandler(deps.Cities)
	trackingHandler := handler.NewTrackingHandler(deps.Tracking)

	// --- Operational routes (never rate limited) ---
	e.GET("/", systemHandler.Root)
	e.GET("/deploy", systemHandler.Deploy)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Public API ---
	var limited []echo.MiddlewareFunc
	if deps.RateLimitRPS > 0 {
		store := middleware.NewLimiterStore(deps.RateLimitRPS, deps.RateLimitBurst)
		store.StartJanitor(ctx)
		limited = append(limited, middleware.RateLimit(store))
	}
	g := e.Group("", limited...)

	g.POST("/compare-prices", comparisonHandler.Compare)
	g.GET("/cities/autocomplete", cityHandler.Autocomplete)

	g.POST("/track-route", trackingHandler.Track)
	g.GET("/tracked-routes/:phone_number", trackingHandler.ListByPhone)
	g.DELETE("/tracked-routes/:route_id", trackingHandler.Untrack)
	g.GET("/price-history/:route_id", trackingHandler.History)

	return e
}
