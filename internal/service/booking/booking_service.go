package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/shortlet/internal/availability"
	"github.com/Domenick1991/shortlet/internal/domain"
	"github.com/Domenick1991/shortlet/internal/kafka"
	"github.com/Domenick1991/shortlet/internal/payment"
	"github.com/Domenick1991/shortlet/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	referencePrefix  = "GHA_"
	defaultListLimit = 50
	maxListLimit     = 200
)

var (
	ErrValidation           = errors.New("invalid booking request")
	ErrDatesUnavailable     = errors.New("selected dates are not available")
	ErrPaymentNotSuccessful = errors.New("payment not successful")
	ErrAmountMismatch       = errors.New("paid amount does not match booking amount")
	ErrBookingInactive      = errors.New("booking has been cancelled")
)

var fieldValidator = validator.New()

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, reference string) (*domain.Booking, error)
	VerifyPayment(ctx context.Context, reference string) (*domain.Booking, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	CompleteBooking(ctx context.Context, reference string) (*domain.Booking, error)
	FailPayment(ctx context.Context, reference string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, reference string) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
	ReconcileAvailability(ctx context.Context) (int, error)
	SignatureHeader() string
}

type Ledger interface {
	Exclusive(ctx context.Context, propertyID string, fn func(ctx context.Context) error) error
	IsRangeAvailable(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error)
	Conflicts(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]domain.Booking, error)
	MarkRangeUnavailable(ctx context.Context, propertyID string, checkIn, checkOut time.Time) error
	Invalidate(ctx context.Context, propertyID string)
}

type PropertyReader interface {
	GetByID(ctx context.Context, id string) (*domain.Property, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	properties         PropertyReader
	ledger             Ledger
	gateway            payment.Gateway
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	pendingTTL         time.Duration
	now                func() time.Time
	newReference       func() string
}

type CreateBookingInput struct {
	PropertyID string `json:"propertyId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	CheckIn    string `json:"checkIn"`
	CheckOut   string `json:"checkOut"`
	Guests     int    `json:"guests"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithReferenceGenerator(gen func() string) BookingServiceOption {
	return func(s *BookingService) {
		s.newReference = gen
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	properties PropertyReader,
	ledger Ledger,
	gateway payment.Gateway,
	producer Producer,
	bookingTopic string,
	pendingTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		properties:   properties,
		ledger:       ledger,
		gateway:      gateway,
		producer:     producer,
		bookingTopic: bookingTopic,
		pendingTTL:   pendingTTL,
		now:          time.Now,
		newReference: newReference,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func newReference() string {
	return fmt.Sprintf("%s%d%s", referencePrefix, time.Now().UnixMilli(), strings.ToUpper(uuid.NewString()[:4]))
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	checkIn, checkOut, err := validateInput(&input)
	if err != nil {
		return nil, err
	}

	property, err := s.properties.GetByID(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsBookable {
		return nil, ErrDatesUnavailable
	}

	booking := &domain.Booking{
		ID:            uuid.NewString(),
		PropertyID:    property.ID,
		Reference:     s.newReference(),
		Name:          input.Name,
		Email:         input.Email,
		Phone:         input.Phone,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        input.Guests,
		Amount:        property.PricePerNight * int64(max(1, availability.Nights(checkIn, checkOut))),
		PaymentStatus: domain.PaymentStatusPending,
		IsActive:      true,
	}

	err = s.ledger.Exclusive(ctx, property.ID, func(ctx context.Context) error {
		available, err := s.ledger.IsRangeAvailable(ctx, property.ID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if !available {
			return ErrDatesUnavailable
		}
		return s.bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventBookingCreated, booking, property.Title, nil)
	return booking, nil
}

func validateInput(input *CreateBookingInput) (time.Time, time.Time, error) {
	input.PropertyID = strings.TrimSpace(input.PropertyID)
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)

	switch {
	case input.PropertyID == "":
		return time.Time{}, time.Time{}, fmt.Errorf("%w: property id is required", ErrValidation)
	case input.Name == "":
		return time.Time{}, time.Time{}, fmt.Errorf("%w: name is required", ErrValidation)
	case input.Email == "":
		return time.Time{}, time.Time{}, fmt.Errorf("%w: email is required", ErrValidation)
	case input.Phone == "":
		return time.Time{}, time.Time{}, fmt.Errorf("%w: phone is required", ErrValidation)
	case input.Guests < 1:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: at least one guest is required", ErrValidation)
	}
	if err := fieldValidator.Var(input.Email, "required,email"); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return availability.ParseRange(input.CheckIn, input.CheckOut)
}

func (s *BookingService) GetBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.bookings.GetByReference(ctx, reference)
}

func (s *BookingService) SignatureHeader() string {
	return s.gateway.SignatureHeader()
}

// VerifyPayment asks the gateway about the reference and completes the
// booking on success. A gateway-reported failure marks the booking failed.
func (s *BookingService) VerifyPayment(ctx context.Context, reference string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == domain.PaymentStatusCompleted {
		return booking, nil
	}

	verification, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify payment %s: %w", reference, err)
	}

	switch verification.Status {
	case payment.StatusSuccess:
		return s.completePaid(ctx, booking, verification.Amount)
	case payment.StatusFailed:
		if _, err := s.FailPayment(ctx, reference); err != nil {
			return nil, err
		}
	}
	return nil, ErrPaymentNotSuccessful
}

// HandleWebhook returns an error only for a bad signature or an
// infrastructure failure worth a gateway retry.
func (s *BookingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	switch event.Status {
	case payment.StatusSuccess:
		booking, err := s.bookings.GetByReference(ctx, event.Reference)
		if err != nil {
			if errors.Is(err, domain.ErrBookingNotFound) {
				log.Printf("[booking] webhook %s for unknown reference %q", event.Type, event.Reference)
				return nil
			}
			return err
		}
		_, err = s.completePaid(ctx, booking, event.Amount)
		if errors.Is(err, ErrDatesUnavailable) || errors.Is(err, ErrAmountMismatch) || errors.Is(err, ErrBookingInactive) {
			return nil
		}
		return err
	case payment.StatusFailed:
		_, err := s.FailPayment(ctx, event.Reference)
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil
		}
		return err
	}

	log.Printf("[booking] webhook %s ignored", event.Type)
	return nil
}

func (s *BookingService) completePaid(ctx context.Context, booking *domain.Booking, paid int64) (*domain.Booking, error) {
	if paid > 0 && paid < booking.Amount {
		log.Printf("[booking] %s paid %d, expected %d", booking.Reference, paid, booking.Amount)
		return nil, ErrAmountMismatch
	}
	return s.CompleteBooking(ctx, booking.Reference)
}

// CompleteBooking finalizes a paid booking under the property lock. It is a
// no-op for a booking that is already completed. If another completed stay
// now overlaps, the booking is marked failed and a conflict event is
// published so the payment can be refunded. Events go out after the lock is
// released.
func (s *BookingService) CompleteBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == domain.PaymentStatusCompleted {
		return booking, nil
	}
	title := s.propertyTitle(ctx, booking.PropertyID)
	if !booking.IsActive {
		s.publish(ctx, kafka.EventBookingConflict, booking, title, ErrBookingInactive)
		return nil, ErrBookingInactive
	}

	var (
		result *domain.Booking
		events []pendingEvent
	)
	err = s.ledger.Exclusive(ctx, booking.PropertyID, func(ctx context.Context) error {
		conflicts, err := s.ledger.Conflicts(ctx, booking.PropertyID, booking.CheckIn, booking.CheckOut)
		if err != nil {
			return err
		}
		for _, other := range conflicts {
			if other.Reference == booking.Reference {
				continue
			}
			failed, transitioned, err := s.bookings.MarkFailed(ctx, reference)
			if err != nil {
				return err
			}
			log.Printf("[booking] %s overlaps completed booking %s, refund required", reference, other.Reference)
			if transitioned {
				events = append(events, pendingEvent{kafka.EventBookingConflict, failed, ErrDatesUnavailable})
			}
			return ErrDatesUnavailable
		}

		completed, transitioned, err := s.bookings.MarkCompleted(ctx, reference)
		if err != nil {
			return err
		}
		result = completed
		if !transitioned {
			return nil
		}

		if err := s.ledger.MarkRangeUnavailable(ctx, completed.PropertyID, completed.CheckIn, completed.CheckOut); err != nil {
			log.Printf("[booking] mark dates unavailable for %s: %v", reference, err)
			events = append(events, pendingEvent{kafka.EventAvailabilitySyncFailed, completed, err})
		} else if err := s.bookings.SetAvailabilitySynced(ctx, reference, true); err != nil {
			log.Printf("[booking] flag %s as synced: %v", reference, err)
		} else {
			completed.AvailabilitySynced = true
		}
		events = append(events, pendingEvent{kafka.EventBookingCompleted, completed, nil})
		return nil
	})
	for _, e := range events {
		s.publish(ctx, e.eventType, e.booking, title, e.cause)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

type pendingEvent struct {
	eventType string
	booking   *domain.Booking
	cause     error
}

// FailPayment never downgrades a completed booking. The status guard lives
// in the UPDATE so a completion racing with this call wins.
func (s *BookingService) FailPayment(ctx context.Context, reference string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if booking.PaymentStatus == domain.PaymentStatusCompleted || booking.PaymentStatus == domain.PaymentStatusFailed {
		return booking, nil
	}

	updated, transitioned, err := s.bookings.MarkFailed(ctx, reference)
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.publish(ctx, kafka.EventBookingFailed, updated, "", nil)
	}
	return updated, nil
}

// CancelBooking deactivates the booking. Its nights stop counting as booked
// but overrides written when it completed stay in place.
func (s *BookingService) CancelBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	updated, err := s.bookings.Deactivate(ctx, reference)
	if err != nil {
		return nil, err
	}
	s.ledger.Invalidate(ctx, updated.PropertyID)
	s.publish(ctx, kafka.EventBookingCancelled, updated, "", nil)
	return updated, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return err
	}
	s.ledger.Invalidate(ctx, booking.PropertyID)
	return nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, filter.PaymentStatus)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return s.bookings.List(ctx, filter)
}

func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	deadline := s.now().Add(-s.pendingTTL)
	expired, err := s.bookings.ExpirePendingBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.publish(ctx, kafka.EventBookingExpired, &expired[i], "", nil)
	}
	return expired, nil
}

// ReconcileAvailability retries the calendar write for completed bookings
// whose dates were never recorded. It returns how many were synced.
func (s *BookingService) ReconcileAvailability(ctx context.Context) (int, error) {
	pending, err := s.bookings.ListUnsynced(ctx)
	if err != nil {
		return 0, err
	}

	var (
		synced int
		errs   []error
	)
	for _, b := range pending {
		err := s.ledger.Exclusive(ctx, b.PropertyID, func(ctx context.Context) error {
			if err := s.ledger.MarkRangeUnavailable(ctx, b.PropertyID, b.CheckIn, b.CheckOut); err != nil {
				return err
			}
			return s.bookings.SetAvailabilitySynced(ctx, b.Reference, true)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("reconcile %s: %w", b.Reference, err))
			continue
		}
		synced++
	}
	return synced, errors.Join(errs...)
}

func (s *BookingService) propertyTitle(ctx context.Context, propertyID string) string {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return ""
	}
	return property.Title
}

// publish is best effort. Failures are logged and never fail the caller.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, title string, cause error) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, booking)
	event.PropertyTitle = title
	if cause != nil {
		event.Error = cause.Error()
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Reference, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, booking.Reference, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %s: %v", eventType, booking.Reference, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
