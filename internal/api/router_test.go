package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/api/handler"
	"github.com/airiscab/ridefare/internal/core/domain"
	"github.com/airiscab/ridefare/internal/core/ports"
	"github.com/airiscab/ridefare/internal/core/service"
	"github.com/airiscab/ridefare/internal/infrastructure/maps/static"
)

// stubTracking answers every tracking call with a fixed error.
type stubTracking struct {
	err   error
	phone string
}

func (s *stubTracking) Track(context.Context, ports.TrackRouteInput) (*ports.TrackRouteResult, error) {
	return nil, s.err
}

func (s *stubTracking) CheckRoute(context.Context, int64) (*ports.CheckResult, error) {
	return nil, s.err
}

func (s *stubTracking) ListByPhone(_ context.Context, phone string) ([]*domain.TrackedRoute, error) {
	s.phone = phone
	if err := domain.ValidatePhone(phone); err != nil {
		return nil, err
	}
	return nil, s.err
}

func (s *stubTracking) Untrack(context.Context, int64) error { return s.err }

func (s *stubTracking) History(context.Context, int64, int) ([]domain.PriceHistory, error) {
	return nil, s.err
}

func (s *stubTracking) ResumeActive(context.Context) (int, error) { return 0, s.err }

func newTestRouter(t *testing.T, tracking ports.TrackingService, rps float64) *echo.Echo {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	reg := prometheus.NewRegistry()
	return NewRouter(ctx, RouterDeps{
		Comparison:       service.NewComparisonService(static.New(), zerolog.Nop()),
		Cities:           service.NewCityService(nil),
		Tracking:         tracking,
		Checks:           []handler.DependencyCheck{{Name: "database", Ping: func(context.Context) error { return nil }}},
		CORSAllowOrigins: []string{"http://localhost:3000"},
		RateLimitRPS:     rps,
		RateLimitBurst:   1,
		Registerer:       reg,
		Gatherer:         reg,
		Log:              zerolog.Nop(),
	})
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.RemoteAddr = "192.0.2.1:4000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ComparePrices(t *testing.T) {
	e := newTestRouter(t, &stubTracking{}, 0)

	rec := do(e, http.MethodPost, "/compare-prices",
		`{"pickup_address":"Manhattan","dropoff_address":"Brooklyn","passenger_count":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 4 {
		t.Fatalf("expected 4 tiers for a solo rider, got %d", len(resp))
	}
	if resp[0]["service"] != "Bike" || resp[0]["recommended"] != false {
		t.Fatalf("bike should be listed first, not recommended: %+v", resp[0])
	}
	if resp[1]["service"] != "Uber" || resp[1]["recommended"] != true {
		t.Fatalf("uber should be recommended: %+v", resp[1])
	}
	if resp[0]["distance"] != float64(8) || resp[0]["duration"] != float64(2700) {
		t.Fatalf("unexpected bike leg: %+v", resp[0])
	}
}

func TestRouter_CitiesAndSystemRoutes(t *testing.T) {
	e := newTestRouter(t, &stubTracking{}, 0)

	rec := do(e, http.MethodGet, "/cities/autocomplete?query=que", "")
	if rec.Body.String() != "[\"Queens\"]\n" {
		t.Fatalf("unexpected autocomplete body %q", rec.Body.String())
	}

	for _, path := range []string{"/", "/deploy", "/health", "/health/ready", "/metrics"} {
		if rec := do(e, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		method   string
		target   string
		wantCode int
		wantMsg  string
	}{
		{"missing route", domain.ErrRouteNotFound, http.MethodDelete, "/tracked-routes/12", http.StatusNotFound, "Route not found"},
		{"missing history", domain.ErrRouteNotFound, http.MethodGet, "/price-history/12", http.StatusNotFound, "Route not found"},
		{"bad phone", nil, http.MethodGet, "/tracked-routes/12345", http.StatusBadRequest, "Phone number must be in E.164 format (+1XXXXXXXXXX)"},
		{"unknown route", nil, http.MethodGet, "/nope", http.StatusNotFound, "Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestRouter(t, &stubTracking{err: tc.err}, 0)
			rec := do(e, tc.method, tc.target, "")
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tc.wantMsg {
				t.Fatalf("expected %q, got %q", tc.wantMsg, resp.Error)
			}
		})
	}
}

func TestRouter_PhoneIsURLDecoded(t *testing.T) {
	tracking := &stubTracking{}
	e := newTestRouter(t, tracking, 0)

	rec := do(e, http.MethodGet, "/tracked-routes/%2B15551234567", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if tracking.phone != "+15551234567" {
		t.Fatalf("expected decoded phone, got %q", tracking.phone)
	}
}

func TestRouter_RateLimited(t *testing.T) {
	e := newTestRouter(t, &stubTracking{}, 0.01)

	if rec := do(e, http.MethodGet, "/cities/autocomplete?query=a", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}
	rec := do(e, http.MethodGet, "/cities/autocomplete?query=a", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	// Probes stay reachable.
	if rec := do(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	e := newTestRouter(t, &stubTracking{}, 0)

	req := httptest.NewRequest(http.MethodOptions, "/compare-prices", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}
