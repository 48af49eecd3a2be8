package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/go-co-op/gocron/v2"
)

type BookingMaintainer interface {
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
	ReconcileAvailability(ctx context.Context) (int, error)
}

// Schedule registers the expiry sweep and the calendar reconciler. A run
// that overlaps the previous one is skipped.
func Schedule(ctx context.Context, s gocron.Scheduler, svc BookingMaintainer, sweepEvery, reconcileEvery time.Duration) error {
	jobs := []struct {
		name  string
		every time.Duration
		run   func(context.Context, BookingMaintainer)
	}{
		{name: "expire-pending-bookings", every: sweepEvery, run: ExpirePending},
		{name: "reconcile-availability", every: reconcileEvery, run: Reconcile},
	}

	for _, job := range jobs {
		run := job.run
		if _, err := s.NewJob(
			gocron.DurationJob(job.every),
			gocron.NewTask(func() { run(ctx, svc) }),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			return fmt.Errorf("schedule %s: %w", job.name, err)
		}
	}
	return nil
}

func ExpirePending(ctx context.Context, svc BookingMaintainer) {
	expired, err := svc.ExpirePendingBookings(ctx)
	if err != nil {
		log.Printf("[worker] expire bookings error: %v", err)
		return
	}
	if len(expired) > 0 {
		log.Printf("[worker] expired %d bookings", len(expired))
	}
}

func Reconcile(ctx context.Context, svc BookingMaintainer) {
	synced, err := svc.ReconcileAvailability(ctx)
	if err != nil {
		log.Printf("[worker] reconcile availability: synced %d, error: %v", synced, err)
		return
	}
	if synced > 0 {
		log.Printf("[worker] reconciled %d bookings", synced)
	}
}
