// Package scheduler runs the periodic price check of every tracked route.
//
// Each route gets its own goroutine driven by a time.Ticker. A job removes
// itself once the route is gone or no longer active.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/api/metrics"
	"github.com/airiscab/ridefare/internal/core/domain"
	"github.com/airiscab/ridefare/internal/core/ports"
)

const defaultInterval = 15 * time.Minute

var (
	ErrNotStarted = errors.New("scheduler not started")
	ErrStopped    = errors.New("scheduler stopped")
)

type job struct {
	cancel context.CancelFunc
}

// Scheduler implements ports.JobScheduler.
type Scheduler struct {
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	ctx     context.Context
	checker ports.RouteChecker
	jobs    map[int64]*job
	stopped bool
	wg      sync.WaitGroup
}

// New creates a Scheduler firing every interval. If interval <= 0,
// defaultInterval is used.
func New(interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		interval: interval,
		log:      log,
		jobs:     make(map[int64]*job),
	}
}

// JobID is the name a route's job is logged under.
func JobID(routeID int64) string {
	return fmt.Sprintf("route_%d", routeID)
}

// Start binds the scheduler to checker. Jobs stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, checker ports.RouteChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
	s.checker = checker
}

// Schedule starts the periodic check of a route. Scheduling a route that
// already has a job is a no-op.
func (s *Scheduler) Schedule(routeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.stopped:
		return ErrStopped
	case s.ctx == nil:
		return ErrNotStarted
	}
	if _, ok := s.jobs[routeID]; ok {
		return nil
	}

	ctx, cancel := context.WithCancel(s.ctx)
	j := &job{cancel: cancel}
	s.jobs[routeID] = j
	metrics.ScheduledJobs.Set(float64(len(s.jobs)))

	s.wg.Add(1)
	go s.run(ctx, routeID, j)

	s.log.Debug().Str("job_id", JobID(routeID)).Dur("interval", s.interval).Msg("job scheduled")
	return nil
}

// Cancel stops a route's job. It does not wait for a running check, so it is
// safe to call from inside one.
func (s *Scheduler) Cancel(routeID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[routeID]
	if !ok {
		return
	}
	j.cancel()
	delete(s.jobs, routeID)
	metrics.ScheduledJobs.Set(float64(len(s.jobs)))
	s.log.Debug().Str("job_id", JobID(routeID)).Msg("job cancelled")
}

// Len returns the number of live jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Stop cancels every job and waits for running checks to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, j := range s.jobs {
		j.cancel()
		delete(s.jobs, id)
	}
	metrics.ScheduledJobs.Set(0)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, routeID int64, j *job) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.checker.CheckRoute(ctx, routeID)
			switch {
			case errors.Is(err, domain.ErrRouteNotFound), errors.Is(err, domain.ErrRouteInactive):
				s.remove(routeID, j)
				s.log.Info().Str("job_id", JobID(routeID)).Msg("route no longer tracked, job removed")
				return
			case err != nil:
				s.log.Error().Err(err).Str("job_id", JobID(routeID)).Msg("price check failed")
			case res != nil && res.Notified:
				s.remove(routeID, j)
				return
			}
		}
	}
}

// remove drops j if it is still the job registered for routeID.
func (s *Scheduler) remove(routeID int64, j *job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.jobs[routeID]; ok && cur == j {
		j.cancel()
		delete(s.jobs, routeID)
		metrics.ScheduledJobs.Set(float64(len(s.jobs)))
	}
}
