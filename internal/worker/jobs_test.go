package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMaintainer struct {
	mock.Mock
}

func (m *MockMaintainer) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockMaintainer) ReconcileAvailability(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestExpirePending(t *testing.T) {
	ctx := context.Background()
	svc := &MockMaintainer{}
	svc.On("ExpirePendingBookings", ctx).Return([]domain.Booking{{Reference: "GHA_1"}}, nil).Once()
	svc.On("ExpirePendingBookings", ctx).Return(nil, errors.New("db down")).Once()

	ExpirePending(ctx, svc)
	ExpirePending(ctx, svc)

	svc.AssertNumberOfCalls(t, "ExpirePendingBookings", 2)
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	svc := &MockMaintainer{}
	svc.On("ReconcileAvailability", ctx).Return(1, errors.New("one failed")).Once()

	Reconcile(ctx, svc)

	svc.AssertExpectations(t)
}

func TestSchedule_RegistersJobs(t *testing.T) {
	s, err := gocron.NewScheduler()
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	err = Schedule(context.Background(), s, &MockMaintainer{}, 5*time.Minute, 10*time.Minute)
	require.NoError(t, err)

	var names []string
	for _, j := range s.Jobs() {
		names = append(names, j.Name())
	}
	assert.ElementsMatch(t, []string{"expire-pending-bookings", "reconcile-availability"}, names)
}

func TestSchedule_RejectsZeroInterval(t *testing.T) {
	s, err := gocron.NewScheduler()
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	err = Schedule(context.Background(), s, &MockMaintainer{}, 0, time.Minute)
	assert.ErrorContains(t, err, "expire-pending-bookings")
}
