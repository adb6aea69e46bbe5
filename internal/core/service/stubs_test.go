package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/airiscab/ridefare/internal/core/domain"
	"github.com/airiscab/ridefare/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Route repository stub (in-memory)
// ---------------------------------------------------------------------------

type stubRouteRepo struct {
	mu            sync.Mutex
	nextID        int64
	byID          map[int64]*domain.TrackedRoute
	createErr     error
	deactivateErr error
	deleted       []int64
	onDeactivate  func()
}

func newStubRouteRepo() *stubRouteRepo {
	return &stubRouteRepo{byID: make(map[int64]*domain.TrackedRoute)}
}

func (r *stubRouteRepo) seed(route domain.TrackedRoute) *domain.TrackedRoute {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	route.ID = r.nextID
	if route.CreatedAt.IsZero() {
		route.CreatedAt = time.Now().UTC()
	}
	r.byID[route.ID] = &route
	return &route
}

func (r *stubRouteRepo) Create(_ context.Context, route *domain.TrackedRoute) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	route.ID = r.nextID
	route.CreatedAt = time.Now().UTC()
	cp := *route
	r.byID[route.ID] = &cp
	return nil
}

func (r *stubRouteRepo) FindByID(_ context.Context, id int64) (*domain.TrackedRoute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRouteNotFound
	}
	cp := *route
	return &cp, nil
}

func (r *stubRouteRepo) ListByPhone(_ context.Context, phone string) ([]*domain.TrackedRoute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TrackedRoute
	for _, route := range r.byID {
		if route.PhoneNumber == phone {
			cp := *route
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubRouteRepo) ListActive(_ context.Context) ([]*domain.TrackedRoute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TrackedRoute
	for _, route := range r.byID {
		if route.IsActive {
			cp := *route
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubRouteRepo) Deactivate(_ context.Context, id int64) error {
	if r.deactivateErr != nil {
		return r.deactivateErr
	}
	if r.onDeactivate != nil {
		r.onDeactivate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.byID[id]
	if !ok {
		return domain.ErrRouteNotFound
	}
	if !route.Deactivate() {
		return domain.ErrRouteInactive
	}
	return nil
}

func (r *stubRouteRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrRouteNotFound
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// ---------------------------------------------------------------------------
// Price history stub
// ---------------------------------------------------------------------------

type stubHistoryRepo struct {
	mu        sync.Mutex
	entries   []domain.PriceHistory
	appendErr error
	lastLimit int
}

func (h *stubHistoryRepo) Append(_ context.Context, entries []domain.PriceHistory) error {
	if h.appendErr != nil {
		return h.appendErr
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entries...)
	return nil
}

func (h *stubHistoryRepo) ListByRoute(_ context.Context, routeID int64, limit int) ([]domain.PriceHistory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastLimit = limit
	var out []domain.PriceHistory
	for i := len(h.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if h.entries[i].RouteID == routeID {
			out = append(out, h.entries[i])
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Outbound stubs
// ---------------------------------------------------------------------------

type stubDistance struct {
	metrics domain.RouteMetrics
	err     error
	calls   int
}

func (d *stubDistance) Name() string { return "stub" }

func (d *stubDistance) RouteMetrics(_ context.Context, _, _ string) (*domain.RouteMetrics, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	m := d.metrics
	return &m, nil
}

type sentSMS struct {
	to   string
	body string
}

type stubNotifier struct {
	mu      sync.Mutex
	err     error
	sent    []sentSMS
	ctxErrs []error
}

func (n *stubNotifier) Name() string { return "stub" }

func (n *stubNotifier) Send(ctx context.Context, to, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentSMS{to: to, body: body})
	n.ctxErrs = append(n.ctxErrs, ctx.Err())
	return n.err
}

type stubPublisher struct {
	mu     sync.Mutex
	err    error
	alerts []domain.PriceAlert
}

func (p *stubPublisher) PublishAlert(_ context.Context, a domain.PriceAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, a)
	return p.err
}

type stubLock struct {
	busy     bool
	err      error
	acquired int
	released []string
}

func (l *stubLock) TryAcquire(_ context.Context, _ int64, _ time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if l.busy {
		return "", false, nil
	}
	l.acquired++
	return fmt.Sprintf("token-%d", l.acquired), true, nil
}

func (l *stubLock) Release(_ context.Context, _ int64, token string) error {
	l.released = append(l.released, token)
	return nil
}

type stubScheduler struct {
	mu          sync.Mutex
	scheduled   []int64
	cancelled   []int64
	scheduleErr error
}

func (s *stubScheduler) Schedule(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduleErr != nil {
		return s.scheduleErr
	}
	s.scheduled = append(s.scheduled, id)
	return nil
}

func (s *stubScheduler) Cancel(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, id)
}

var errBoom = errors.New("boom")

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type trackingFixture struct {
	routes    *stubRouteRepo
	history   *stubHistoryRepo
	distance  *stubDistance
	notifier  *stubNotifier
	publisher *stubPublisher
	lock      *stubLock
	scheduler *stubScheduler
}

// 8 miles / 30 minutes: the cheapest car fare is at least 23.50 and at most
// 35.25 depending on surge, so targets of 1 and 1000 are unambiguous.
func newTrackingFixture() *trackingFixture {
	return &trackingFixture{
		routes:    newStubRouteRepo(),
		history:   &stubHistoryRepo{},
		distance:  &stubDistance{metrics: domain.RouteMetrics{DistanceMiles: 8, DurationSeconds: 1800, DurationInTraffic: 1800}},
		notifier:  &stubNotifier{},
		publisher: &stubPublisher{},
		lock:      &stubLock{},
		scheduler: &stubScheduler{},
	}
}

func (f *trackingFixture) service() ports.TrackingService {
	return NewTrackingService(TrackingDeps{
		Routes:    f.routes,
		History:   f.history,
		Distance:  f.distance,
		Notifier:  f.notifier,
		Publisher: f.publisher,
		Lock:      f.lock,
		Scheduler: f.scheduler,
	}, testLogger)
}
