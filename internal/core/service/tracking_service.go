package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/api/metrics"
	"github.com/airiscab/ridefare/internal/core/domain"
	"github.com/airiscab/ridefare/internal/core/ports"
	"github.com/airiscab/ridefare/internal/core/pricing"
)

const (
	checkLockTTL        = 2 * time.Minute
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// TrackingDeps groups the collaborators of the tracking service.
type TrackingDeps struct {
	Routes    ports.RouteRepository
	History   ports.PriceHistoryRepository
	Distance  ports.DistanceProvider
	Notifier  ports.Notifier
	Publisher ports.AlertPublisher
	Lock      ports.CheckLock
	Scheduler ports.JobScheduler
}

type trackingService struct {
	routes    ports.RouteRepository
	history   ports.PriceHistoryRepository
	distance  ports.DistanceProvider
	notifier  ports.Notifier
	publisher ports.AlertPublisher
	lock      ports.CheckLock
	scheduler ports.JobScheduler
	log       zerolog.Logger
}

// NewTrackingService returns a TrackingService implementation.
func NewTrackingService(deps TrackingDeps, log zerolog.Logger) ports.TrackingService {
	return &trackingService{
		routes:    deps.Routes,
		history:   deps.History,
		distance:  deps.Distance,
		notifier:  deps.Notifier,
		publisher: deps.Publisher,
		lock:      deps.Lock,
		scheduler: deps.Scheduler,
		log:       log,
	}
}

// Track stores a new price alert, checks it once right away and schedules the
// periodic check unless the first check already hit the target.
func (s *trackingService) Track(ctx context.Context, in ports.TrackRouteInput) (*ports.TrackRouteResult, error) {
	if err := domain.ValidatePhone(in.PhoneNumber); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassengerCount(in.PassengerCount); err != nil {
		return nil, err
	}
	if !(in.TargetPrice > 0) {
		return nil, domain.ErrInvalidTargetPrice
	}

	route := &domain.TrackedRoute{
		Pickup:         in.Pickup,
		Dropoff:        in.Dropoff,
		PassengerCount: in.PassengerCount,
		PhoneNumber:    in.PhoneNumber,
		TargetPrice:    in.TargetPrice,
		IsActive:       true,
	}
	if err := s.routes.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("track route: %w", err)
	}

	result := &ports.TrackRouteResult{RouteID: route.ID}

	check, err := s.CheckRoute(ctx, route.ID)
	if err != nil {
		s.log.Warn().Err(err).Int64("route_id", route.ID).Msg("initial price check failed")
	} else if check.Notified {
		result.Notified = true
	}

	if !result.Notified {
		if err := s.scheduler.Schedule(route.ID); err != nil {
			s.log.Error().Err(err).Int64("route_id", route.ID).Msg("failed to schedule price check")
		}
	}

	s.log.Info().
		Int64("route_id", route.ID).
		Str("pickup", route.Pickup).
		Str("dropoff", route.Dropoff).
		Float64("target_price", route.TargetPrice).
		Bool("notified", result.Notified).
		Msg("route tracking started")

	return result, nil
}

// CheckRoute prices a tracked route, records the history and sends the alert
// when the cheapest fare is at or below the target.
func (s *trackingService) CheckRoute(ctx context.Context, routeID int64) (*ports.CheckResult, error) {
	start := time.Now()
	res, err := s.checkRoute(ctx, routeID)
	metrics.PriceCheckDuration.Observe(time.Since(start).Seconds())
	metrics.PriceChecksTotal.WithLabelValues(checkOutcome(res, err)).Inc()
	return res, err
}

func (s *trackingService) checkRoute(ctx context.Context, routeID int64) (*ports.CheckResult, error) {
	now := time.Now()

	// 1. Per-route lock; a broken lock store must not stop checks.
	token, held, err := s.lock.TryAcquire(ctx, routeID, checkLockTTL)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Int64("route_id", routeID).Msg("check lock unavailable, checking anyway")
	case !held:
		s.log.Debug().Int64("route_id", routeID).Msg("route is being checked elsewhere")
		return &ports.CheckResult{RouteID: routeID, Skipped: true, CheckedAt: now}, nil
	default:
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), routeID, token); err != nil {
				s.log.Warn().Err(err).Int64("route_id", routeID).Msg("failed to release check lock")
			}
		}()
	}

	// 2. Route must still exist and be active.
	route, err := s.routes.FindByID(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("check route %d: %w", routeID, err)
	}
	if !route.IsActive {
		return nil, fmt.Errorf("check route %d: %w", routeID, domain.ErrRouteInactive)
	}

	// 3. Quote every tier that can carry the group.
	m, err := s.distance.RouteMetrics(ctx, route.Pickup, route.Dropoff)
	if err != nil {
		return nil, fmt.Errorf("check route %d: %w", routeID, err)
	}
	estimates := pricing.Eligible(*m, route.Pickup, route.Dropoff, route.PassengerCount, now)
	cheapest, err := pricing.Cheapest(estimates, route.PassengerCount)
	if err != nil {
		return nil, fmt.Errorf("check route %d: %w", routeID, err)
	}

	// 4. One history row per tier, all with the same timestamp.
	entries := make([]domain.PriceHistory, len(estimates))
	for i, e := range estimates {
		entries[i] = domain.PriceHistory{
			RouteID:   routeID,
			Service:   string(e.Service),
			Price:     e.Price,
			Timestamp: now.UTC(),
		}
	}
	if err := s.history.Append(ctx, entries); err != nil {
		return nil, fmt.Errorf("check route %d: record history: %w", routeID, err)
	}

	res := &ports.CheckResult{
		RouteID:         routeID,
		CheapestService: cheapest.Service,
		CheapestPrice:   cheapest.Price,
		CheckedAt:       now,
	}
	if cheapest.Price > route.TargetPrice {
		return res, nil
	}

	// 5. Only the caller that flips the route to inactive sends the alert.
	if err := s.routes.Deactivate(ctx, routeID); err != nil {
		if errors.Is(err, domain.ErrRouteInactive) || errors.Is(err, domain.ErrRouteNotFound) {
			return res, nil
		}
		return nil, fmt.Errorf("check route %d: deactivate: %w", routeID, err)
	}
	route.IsActive = false

	// The route is already inactive, so the alert must outlive a caller that
	// goes away, such as an HTTP client behind Track.
	s.alert(context.WithoutCancel(ctx), route, cheapest, now)
	res.Notified = true
	s.scheduler.Cancel(routeID)

	return res, nil
}

// alert delivers the SMS and the broker event. Failures are logged and
// counted; the route stays inactive either way.
func (s *trackingService) alert(ctx context.Context, route *domain.TrackedRoute, best domain.RideEstimate, at time.Time) {
	body := AlertMessage(route.Pickup, route.Dropoff, best.Price, best.Service)
	if err := s.notifier.Send(ctx, route.PhoneNumber, body); err != nil {
		metrics.NotificationsTotal.WithLabelValues(s.notifier.Name(), "failed").Inc()
		s.log.Error().Err(err).
			Int64("route_id", route.ID).
			Str("notifier", s.notifier.Name()).
			Msg("failed to send price alert")
	} else {
		metrics.NotificationsTotal.WithLabelValues(s.notifier.Name(), "sent").Inc()
	}

	alert := domain.PriceAlert{
		RouteID:     route.ID,
		PhoneNumber: route.PhoneNumber,
		Pickup:      route.Pickup,
		Dropoff:     route.Dropoff,
		Service:     best.Service,
		Price:       best.Price,
		TargetPrice: route.TargetPrice,
		At:          at.UTC(),
	}
	if err := s.publisher.PublishAlert(ctx, alert); err != nil {
		metrics.NotificationsTotal.WithLabelValues("broker", "failed").Inc()
		s.log.Warn().Err(err).Int64("route_id", route.ID).Msg("failed to publish price alert")
	} else {
		metrics.NotificationsTotal.WithLabelValues("broker", "sent").Inc()
	}

	s.log.Info().
		Int64("route_id", route.ID).
		Str("service", string(best.Service)).
		Float64("price", best.Price).
		Float64("target_price", route.TargetPrice).
		Msg("target price reached")
}

// AlertMessage is the SMS text sent when a route reaches its target.
func AlertMessage(pickup, dropoff string, price float64, service domain.ServiceTier) string {
	return fmt.Sprintf("Price Alert! Your ride from %s to %s is now %s with %s. Book now to get this rate!",
		pickup, dropoff, pricing.FormatUSD(price), service)
}

// ListByPhone returns every route registered for phone, newest first.
func (s *trackingService) ListByPhone(ctx context.Context, phone string) ([]*domain.TrackedRoute, error) {
	if err := domain.ValidatePhone(phone); err != nil {
		return nil, err
	}
	routes, err := s.routes.ListByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

// Untrack stops the periodic check and deletes the route. Its price history
// is kept.
func (s *trackingService) Untrack(ctx context.Context, routeID int64) error {
	if _, err := s.routes.FindByID(ctx, routeID); err != nil {
		return fmt.Errorf("untrack route %d: %w", routeID, err)
	}

	if err := s.routes.Deactivate(ctx, routeID); err != nil && !errors.Is(err, domain.ErrRouteInactive) {
		return fmt.Errorf("untrack route %d: %w", routeID, err)
	}
	s.scheduler.Cancel(routeID)

	if err := s.routes.Delete(ctx, routeID); err != nil {
		return fmt.Errorf("untrack route %d: %w", routeID, err)
	}

	s.log.Info().Int64("route_id", routeID).Msg("route tracking stopped")
	return nil
}

// History returns recorded prices for a route, newest first. History outlives
// the route, so a deleted route with recorded prices still answers.
func (s *trackingService) History(ctx context.Context, routeID int64, limit int) ([]domain.PriceHistory, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, err := s.history.ListByRoute(ctx, routeID, limit)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	if len(entries) > 0 {
		return entries, nil
	}

	if _, err := s.routes.FindByID(ctx, routeID); err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	return []domain.PriceHistory{}, nil
}

// ResumeActive schedules a check for every active route. Called on startup.
func (s *trackingService) ResumeActive(ctx context.Context) (int, error) {
	routes, err := s.routes.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("resume tracking: %w", err)
	}

	n := 0
	for _, r := range routes {
		if err := s.scheduler.Schedule(r.ID); err != nil {
			s.log.Error().Err(err).Int64("route_id", r.ID).Msg("failed to resume price check")
			continue
		}
		n++
	}

	s.log.Info().Int("routes", n).Msg("tracking resumed")
	return n, nil
}

func checkOutcome(res *ports.CheckResult, err error) string {
	switch {
	case errors.Is(err, domain.ErrRouteNotFound), errors.Is(err, domain.ErrRouteInactive):
		return "gone"
	case err != nil:
		return "error"
	case res.Skipped:
		return "skipped"
	case res.Notified:
		return "target_hit"
	default:
		return "above_target"
	}
}
