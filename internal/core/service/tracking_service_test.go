package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/core/domain"
	"github.com/airiscab/ridefare/internal/core/ports"
)

var testLogger = zerolog.Nop()

func validTrackInput(target float64) ports.TrackRouteInput {
	return ports.TrackRouteInput{
		Pickup:         "Manhattan",
		Dropoff:        "Brooklyn",
		PassengerCount: 3,
		PhoneNumber:    "+15551234567",
		TargetPrice:    target,
	}
}

// ---------------------------------------------------------------------------
// Track
// ---------------------------------------------------------------------------

func TestTrackingService_Track_AboveTargetSchedules(t *testing.T) {
	f := newTrackingFixture()
	svc := f.service()

	res, err := svc.Track(context.Background(), validTrackInput(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RouteID != 1 || res.Notified {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(f.scheduler.scheduled) != 1 || f.scheduler.scheduled[0] != 1 {
		t.Errorf("expected route 1 scheduled, got %v", f.scheduler.scheduled)
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("no SMS expected, got %d", len(f.notifier.sent))
	}
	// Three riders: Uber, Lyft, UberXL.
	if len(f.history.entries) != 3 {
		t.Errorf("expected 3 history rows from the initial check, got %d", len(f.history.entries))
	}
	route, _ := f.routes.FindByID(context.Background(), res.RouteID)
	if !route.IsActive {
		t.Error("route should still be active")
	}
}

func TestTrackingService_Track_ImmediateHitDoesNotSchedule(t *testing.T) {
	f := newTrackingFixture()
	svc := f.service()

	res, err := svc.Track(context.Background(), validTrackInput(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Notified {
		t.Fatal("expected the initial check to notify")
	}
	if len(f.scheduler.scheduled) != 0 {
		t.Errorf("nothing should be scheduled, got %v", f.scheduler.scheduled)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].to != "+15551234567" {
		t.Fatalf("expected one SMS to the rider, got %+v", f.notifier.sent)
	}
	if len(f.publisher.alerts) != 1 {
		t.Errorf("expected one published alert, got %d", len(f.publisher.alerts))
	}
}

func TestTrackingService_Track_AlertSurvivesCallerCancellation(t *testing.T) {
	f := newTrackingFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.routes.onDeactivate = cancel

	res, err := f.service().Track(ctx, validTrackInput(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Notified {
		t.Fatal("expected the initial check to notify")
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected one SMS, got %d", len(f.notifier.sent))
	}
	if f.notifier.ctxErrs[0] != nil {
		t.Errorf("SMS was sent on a cancelled context: %v", f.notifier.ctxErrs[0])
	}
}

func TestTrackingService_Track_Validation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*ports.TrackRouteInput)
		wantErr error
	}{
		{"bad phone", func(in *ports.TrackRouteInput) { in.PhoneNumber = "5551234567" }, domain.ErrInvalidPhone},
		{"no passengers", func(in *ports.TrackRouteInput) { in.PassengerCount = 0 }, domain.ErrInvalidPassengerCount},
		{"too many passengers", func(in *ports.TrackRouteInput) { in.PassengerCount = 8 }, domain.ErrInvalidPassengerCount},
		{"zero target", func(in *ports.TrackRouteInput) { in.TargetPrice = 0 }, domain.ErrInvalidTargetPrice},
		{"negative target", func(in *ports.TrackRouteInput) { in.TargetPrice = -5 }, domain.ErrInvalidTargetPrice},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newTrackingFixture()
			in := validTrackInput(10)
			c.mutate(&in)
			if _, err := f.service().Track(context.Background(), in); !errors.Is(err, c.wantErr) {
				t.Fatalf("expected %v, got %v", c.wantErr, err)
			}
			if len(f.routes.byID) != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestTrackingService_Track_InitialCheckFailureIsNonFatal(t *testing.T) {
	f := newTrackingFixture()
	f.distance.err = domain.ErrRouteUnavailable

	res, err := f.service().Track(context.Background(), validTrackInput(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Notified {
		t.Error("should not be notified")
	}
	if len(f.scheduler.scheduled) != 1 {
		t.Error("route should still be scheduled")
	}
}

func TestTrackingService_Track_RepoError(t *testing.T) {
	f := newTrackingFixture()
	f.routes.createErr = errBoom
	if _, err := f.service().Track(context.Background(), validTrackInput(10)); !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// CheckRoute
// ---------------------------------------------------------------------------

func TestTrackingService_CheckRoute_TargetHit(t *testing.T) {
	f := newTrackingFixture()
	route := f.routes.seed(domain.TrackedRoute{
		Pickup: "Manhattan", Dropoff: "Brooklyn", PassengerCount: 1,
		PhoneNumber: "+15551234567", TargetPrice: 1000, IsActive: true,
	})

	res, err := f.service().CheckRoute(context.Background(), route.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Notified || res.CheapestService != domain.TierUber {
		t.Fatalf("unexpected result: %+v", res)
	}

	sms := f.notifier.sent[0].body
	if !strings.HasPrefix(sms, "Price Alert! Your ride from Manhattan to Brooklyn is now $") ||
		!strings.HasSuffix(sms, " with Uber. Book now to get this rate!") {
		t.Errorf("unexpected SMS body %q", sms)
	}

	stored, _ := f.routes.FindByID(context.Background(), route.ID)
	if stored.IsActive {
		t.Error("route should be inactive after the alert")
	}
	if len(f.scheduler.cancelled) != 1 || f.scheduler.cancelled[0] != route.ID {
		t.Errorf("expected job cancelled, got %v", f.scheduler.cancelled)
	}
	alert := f.publisher.alerts[0]
	if alert.RouteID != route.ID || alert.Service != domain.TierUber || alert.TargetPrice != 1000 {
		t.Errorf("unexpected alert %+v", alert)
	}
	if f.lock.acquired != 1 || len(f.lock.released) != 1 || f.lock.released[0] != "token-1" {
		t.Errorf("lock acquired=%d released=%v", f.lock.acquired, f.lock.released)
	}
}

func TestTrackingService_CheckRoute_HistorySharesTimestamp(t *testing.T) {
	f := newTrackingFixture()
	route := f.routes.seed(domain.TrackedRoute{PassengerCount: 2, PhoneNumber: "+1555", TargetPrice: 1, IsActive: true})

	if _, err := f.service().CheckRoute(context.Background(), route.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Bike", "Uber", "Lyft", "UberXL"}
	if len(f.history.entries) != len(want) {
		t.Fatalf("two riders fit every tier, got %d rows", len(f.history.entries))
	}
	first := f.history.entries[0].Timestamp
	for i, e := range f.history.entries {
		if !e.Timestamp.Equal(first) {
			t.Error("rows of one check must share the timestamp")
		}
		if e.Service != want[i] {
			t.Errorf("row %d service = %s, want %s", i, e.Service, want[i])
		}
	}
}

func TestTrackingService_CheckRoute_SixRidersOnlyPriceTheXL(t *testing.T) {
	f := newTrackingFixture()
	route := f.routes.seed(domain.TrackedRoute{PassengerCount: 6, PhoneNumber: "+1555", TargetPrice: 1, IsActive: true})

	if _, err := f.service().CheckRoute(context.Background(), route.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.history.entries) != 1 || f.history.entries[0].Service != "UberXL" {
		t.Fatalf("expected a single UberXL row, got %+v", f.history.entries)
	}
}

func TestTrackingService_CheckRoute_MissingRoute(t *testing.T) {
	f := newTrackingFixture()
	_, err := f.service().CheckRoute(context.Background(), 42)
	if !errors.Is(err, domain.ErrRouteNotFound) {
		t.Fatalf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestTrackingService_CheckRoute_InactiveRoute(t *testing.T) {
	f := newTrackingFixture()
	route := f.routes.seed(domain.TrackedRoute{PassengerCount: 1, PhoneNumber: "+1555", TargetPrice: 1000})

	_, err := f.service().CheckRoute(context.Background(), route.ID)
	if !errors.Is(err, domain.ErrRouteInactive) {
		t.Fatalf("expected ErrRouteInactive, got %v", err)
	}
	if f.distance.calls != 0 || len(f.notifier.sent) != 0 {
		t.Error("inactive route must not be priced or notified")
	}
}

func TestTrackingService_CheckRoute_LockHeldElsewhereSkips(t *testing.T) {
	f := newTrackingFixture()
	f.lock.busy = true
	route := f.routes.seed(domain.TrackedRoute{PassengerCount: 1, PhoneNumber: "+1555", TargetPrice: 1000, IsActive: true})

	res, err := f.service().CheckRoute(context.Background(), route.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Skipped {
		t.Fatal("expected skipped check")
	}
	if f.distance.calls != 0 || len(f.lock.released) != 0 {
		t.Error("skipped check must not price the route or release the lock")
	}
}

func TestTrackingService_CheckRoute_LockErrorChecksAnyway(t *testing.T) {
	f := newTrackingFixture()
	f.lock.err = errBoom
	route := f.routes.seed(domain.TrackedRoute{PassengerCount: 1, PhoneNumber: "+1555", TargetPrice: 1, IsActive: true})

	res, err := f.service().CheckRoute(context.Background(), route.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped || f.distance.calls != 1 {
		t.Fatalf("expected a real check, got %+v", res)
	}
	if len(f.lock.released) != 0 {
		t.Errorf("a lock that was never acquired must not be released, got %v", f.lock.released)
	}
}

func TestTrackingService_CheckRoute_LostDeactivationRaceDoesNotNotify(t *testing.T) {
	f := newTrackingFixture()
	f.routes.deactivateErr = domain.ErrRouteInactive
	route := f.routes.seed(domain.TrackedRoute{PassengerCount: 1, PhoneNumber: "+1555", TargetPrice: 1000, IsActive: true})

	res, err := f.service().CheckRoute(context.Background(), route.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Notified || len(f.notifier.sent) != 0 || len(f.publisher.alerts) != 0 {
		t.Fatal("only the caller that deactivates the route may notify")
	}
}

func TestTrackingService_CheckRoute_NotifierFailureKeepsRouteInactive(t *testing.T) {
	f := newTrackingFixture()
	f.notifier.err = errBoom
	route := f.routes.seed(domain.TrackedRoute{PassengerCount: 1, PhoneNumber: "+1555", TargetPrice: 1000, IsActive: true})
	svc := f.service()

	res, err := svc.CheckRoute(context.Background(), route.ID)
	if err != nil {
		t.Fatalf("notifier failure must not fail the check: %v", err)
	}
	if !res.Notified {
		t.Error("the alert attempt should be reported")
	}
	if _, err := svc.CheckRoute(context.Background(), route.ID); !errors.Is(err, domain.ErrRouteInactive) {
		t.Fatalf("second check should see an inactive route, got %v", err)
	}
	if len(f.notifier.sent) != 1 {
		t.Errorf("expected exactly one send attempt, got %d", len(f.notifier.sent))
	}
}

func TestTrackingService_CheckRoute_HistoryErrorFails(t *testing.T) {
	f := newTrackingFixture()
	f.history.appendErr = errBoom
	route := f.routes.seed(domain.TrackedRoute{PassengerCount: 1, PhoneNumber: "+1555", TargetPrice: 1000, IsActive: true})

	if _, err := f.service().CheckRoute(context.Background(), route.ID); !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	if len(f.notifier.sent) != 0 {
		t.Error("no alert without recorded history")
	}
}

// ---------------------------------------------------------------------------
// List / Untrack / History / Resume
// ---------------------------------------------------------------------------

func TestTrackingService_ListByPhone(t *testing.T) {
	f := newTrackingFixture()
	f.routes.seed(domain.TrackedRoute{PhoneNumber: "+15551234567", Pickup: "old"})
	f.routes.seed(domain.TrackedRoute{PhoneNumber: "+19998887777"})
	f.routes.seed(domain.TrackedRoute{PhoneNumber: "+15551234567", Pickup: "new"})
	svc := f.service()

	routes, err := svc.ListByPhone(context.Background(), "+15551234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 2 || routes[0].Pickup != "new" {
		t.Fatalf("expected newest first, got %+v", routes)
	}

	if _, err := svc.ListByPhone(context.Background(), "not-a-phone"); !errors.Is(err, domain.ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestTrackingService_Untrack(t *testing.T) {
	f := newTrackingFixture()
	route := f.routes.seed(domain.TrackedRoute{PhoneNumber: "+1555", IsActive: true})
	svc := f.service()

	if err := svc.Untrack(context.Background(), route.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.routes.byID[route.ID]; ok {
		t.Error("route should be deleted")
	}
	if len(f.scheduler.cancelled) != 1 {
		t.Error("job should be cancelled")
	}

	if err := svc.Untrack(context.Background(), route.ID); !errors.Is(err, domain.ErrRouteNotFound) {
		t.Fatalf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestTrackingService_Untrack_InactiveRoute(t *testing.T) {
	f := newTrackingFixture()
	route := f.routes.seed(domain.TrackedRoute{PhoneNumber: "+1555"})
	if err := f.service().Untrack(context.Background(), route.ID); err != nil {
		t.Fatalf("inactive routes can be deleted too: %v", err)
	}
}

func TestTrackingService_History(t *testing.T) {
	f := newTrackingFixture()
	route := f.routes.seed(domain.TrackedRoute{PhoneNumber: "+1555", IsActive: true})
	svc := f.service()

	got, err := svc.History(context.Background(), route.ID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil history, got %v", got)
	}
	if f.history.lastLimit != 100 {
		t.Errorf("default limit = %d, want 100", f.history.lastLimit)
	}

	_, _ = svc.History(context.Background(), route.ID, 5000)
	if f.history.lastLimit != 1000 {
		t.Errorf("capped limit = %d, want 1000", f.history.lastLimit)
	}

	if _, err := svc.History(context.Background(), 99, 10); !errors.Is(err, domain.ErrRouteNotFound) {
		t.Fatalf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestTrackingService_History_OutlivesRoute(t *testing.T) {
	f := newTrackingFixture()
	route := f.routes.seed(domain.TrackedRoute{PassengerCount: 1, PhoneNumber: "+1555", TargetPrice: 1, IsActive: true})
	svc := f.service()

	if _, err := svc.CheckRoute(context.Background(), route.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Untrack(context.Background(), route.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.History(context.Background(), route.ID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("expected 5 rows for a solo rider, got %d", len(got))
	}
}

func TestTrackingService_ResumeActive(t *testing.T) {
	f := newTrackingFixture()
	f.routes.seed(domain.TrackedRoute{IsActive: true})
	f.routes.seed(domain.TrackedRoute{IsActive: false})
	f.routes.seed(domain.TrackedRoute{IsActive: true})

	n, err := f.service().ResumeActive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("resumed %d routes, want 2", n)
	}
	if f.scheduler.scheduled[0] != 1 || f.scheduler.scheduled[1] != 3 {
		t.Errorf("unexpected scheduled ids %v", f.scheduler.scheduled)
	}
}

func TestAlertMessage(t *testing.T) {
	got := AlertMessage("Guntur", "AP", 7.5, domain.TierUber)
	want := "Price Alert! Your ride from Guntur to AP is now $7.50 with Uber. Book now to get this rate!"
	if got != want {
		t.Errorf("AlertMessage() = %q, want %q", got, want)
	}
}
