package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/airiscab/ridefare/internal/core/domain"
	"github.com/airiscab/ridefare/internal/core/ports"
)

type stubComparisonService struct {
	compareFn func(ctx context.Context, in ports.CompareInput) ([]domain.RideEstimate, error)
}

func (s *stubComparisonService) Compare(ctx context.Context, in ports.CompareInput) ([]domain.RideEstimate, error) {
	return s.compareFn(ctx, in)
}

type stubCityService struct {
	lastQuery string
	result    []string
}

func (s *stubCityService) Autocomplete(query string) []string {
	s.lastQuery = query
	return s.result
}

type stubTrackingService struct {
	trackFn   func(ctx context.Context, in ports.TrackRouteInput) (*ports.TrackRouteResult, error)
	listFn    func(ctx context.Context, phone string) ([]*domain.TrackedRoute, error)
	untrackFn func(ctx context.Context, id int64) error
	historyFn func(ctx context.Context, id int64, limit int) ([]domain.PriceHistory, error)
}

func (s *stubTrackingService) Track(ctx context.Context, in ports.TrackRouteInput) (*ports.TrackRouteResult, error) {
	return s.trackFn(ctx, in)
}

func (s *stubTrackingService) CheckRoute(context.Context, int64) (*ports.CheckResult, error) {
	panic("not used by handlers")
}

func (s *stubTrackingService) ListByPhone(ctx context.Context, phone string) ([]*domain.TrackedRoute, error) {
	return s.listFn(ctx, phone)
}

func (s *stubTrackingService) Untrack(ctx context.Context, id int64) error {
	return s.untrackFn(ctx, id)
}

func (s *stubTrackingService) History(ctx context.Context, id int64, limit int) ([]domain.PriceHistory, error) {
	return s.historyFn(ctx, id, limit)
}

func (s *stubTrackingService) ResumeActive(context.Context) (int, error) {
	panic("not used by handlers")
}

// newTestContext builds an echo context for a request carrying an optional
// JSON body, with the validator installed.
func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpErrorCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
