package availability

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/Domenick1991/shortlet/internal/domain"
)

const (
	defaultOpTimeout = 5 * time.Second
	maxCalendarSpan  = 366
	lockKeyPrefix    = "property:"
)

// PropertyStore is the slice of property persistence the ledger needs.
// GetAvailability returns domain.ErrPropertyNotFound for unknown ids.
type PropertyStore interface {
	GetAvailability(ctx context.Context, propertyID string) (*domain.Property, error)
	UpsertOverrides(ctx context.Context, propertyID string, overrides []domain.DateOverride) error
	// ApplyAvailability writes the bookable switch (when non-nil) and the
	// overrides as one unit: either all of it is stored or none of it is.
	ApplyAvailability(ctx context.Context, propertyID string, bookable *bool, overrides []domain.DateOverride) error
}

type BookingStore interface {
	// ListConsuming returns the active, completed bookings of a property.
	ListConsuming(ctx context.Context, propertyID string) ([]domain.Booking, error)
}

type Cache interface {
	GetUnavailableDates(ctx context.Context, propertyID string) (*UnavailableSet, error)
	SetUnavailableDates(ctx context.Context, set *UnavailableSet) error
	InvalidateUnavailableDates(ctx context.Context, propertyID string) error
}

type UnavailableSet struct {
	PropertyID string   `json:"propertyId"`
	IsBookable bool     `json:"isBookable"`
	Dates      []string `json:"unavailableDates"`
}

// OverrideInput is an admin-supplied override. Date is kept raw so that a
// bad entry can be skipped without failing the batch.
type OverrideInput struct {
	Date        string `json:"date"`
	IsAvailable bool   `json:"isAvailable"`
}

type OverrideResult struct {
	Applied []string `json:"applied"`
	Skipped []string `json:"skipped"`
}

type DayReason string

const (
	ReasonNotBookable DayReason = "not_bookable"
	ReasonBooked      DayReason = "booked"
	ReasonOverride    DayReason = "override"
	ReasonDefault     DayReason = "default"
)

type DayState struct {
	Date      string    `json:"date"`
	Available bool      `json:"available"`
	Reason    DayReason `json:"reason"`
}

type Ledger struct {
	properties PropertyStore
	bookings   BookingStore
	cache      Cache
	locker     Locker
	opTimeout  time.Duration
}

type Option func(*Ledger)

func WithCache(cache Cache) Option {
	return func(l *Ledger) {
		l.cache = cache
	}
}

func WithLocker(locker Locker) Option {
	return func(l *Ledger) {
		if locker != nil {
			l.locker = locker
		}
	}
}

func WithOpTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.opTimeout = d
		}
	}
}

func NewLedger(properties PropertyStore, bookings BookingStore, opts ...Option) *Ledger {
	l := &Ledger{
		properties: properties,
		bookings:   bookings,
		locker:     NewMemoryLocker(),
		opTimeout:  defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) ExpandRange(start, endExclusive time.Time) []time.Time {
	return ExpandRange(start, endExclusive)
}

// Exclusive runs fn while holding the property's lock. Ledger operations do
// not lock on their own; callers that check and then write wrap both steps
// in one Exclusive call. Waiting for the lock is bounded by the operation
// timeout; fn itself runs under the caller's ctx.
func (l *Ledger) Exclusive(ctx context.Context, propertyID string, fn func(ctx context.Context) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, l.opTimeout)
	unlock, err := l.locker.Lock(lockCtx, lockKeyPrefix+propertyID)
	cancel()
	if err != nil {
		return fmt.Errorf("lock property %s: %w", propertyID, err)
	}
	defer unlock()
	return fn(ctx)
}

func (l *Ledger) IsRangeAvailable(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	property, err := l.properties.GetAvailability(ctx, propertyID)
	if err != nil {
		return false, err
	}
	if !property.IsBookable {
		return false, nil
	}

	bookings, err := l.bookings.ListConsuming(ctx, propertyID)
	if err != nil {
		return false, fmt.Errorf("list bookings: %w", err)
	}
	if len(conflicting(bookings, checkIn, checkOut)) > 0 {
		return false, nil
	}

	overrides := overrideIndex(property.Availability)
	for _, day := range ExpandRange(checkIn, checkOut) {
		if available, ok := overrides[DayKey(day)]; ok && !available {
			return false, nil
		}
	}
	return true, nil
}

// Conflicts returns the completed, active bookings that collide with the
// requested range under the inclusive overlap rule.
func (l *Ledger) Conflicts(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]domain.Booking, error) {
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	bookings, err := l.bookings.ListConsuming(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return conflicting(bookings, checkIn, checkOut), nil
}

// MarkRangeUnavailable records a confirmed stay as false overrides for every
// night in [checkIn, checkOut). Running it twice leaves the same state.
func (l *Ledger) MarkRangeUnavailable(ctx context.Context, propertyID string, checkIn, checkOut time.Time) error {
	if err := ValidateRange(checkIn, checkOut); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	if _, err := l.properties.GetAvailability(ctx, propertyID); err != nil {
		return err
	}

	days := ExpandRange(checkIn, checkOut)
	overrides := make([]domain.DateOverride, 0, len(days))
	for _, day := range days {
		overrides = append(overrides, domain.DateOverride{Date: day, IsAvailable: false})
	}
	if err := l.properties.UpsertOverrides(ctx, propertyID, overrides); err != nil {
		return fmt.Errorf("save overrides: %w", err)
	}
	l.Invalidate(ctx, propertyID)
	return nil
}

// SetDateOverrides upserts admin overrides by day. Unparseable dates are
// reported in Skipped and the rest of the batch still applies. When a day
// appears more than once the last entry wins.
func (l *Ledger) SetDateOverrides(ctx context.Context, propertyID string, entries []OverrideInput) (*OverrideResult, error) {
	return l.ApplyAvailability(ctx, propertyID, nil, entries)
}

func (l *Ledger) SetBookable(ctx context.Context, propertyID string, bookable bool) error {
	_, err := l.ApplyAvailability(ctx, propertyID, &bookable, nil)
	return err
}

// ApplyAvailability stores an optional bookable switch together with a batch
// of overrides in a single store write. Override entries follow the
// SetDateOverrides rules.
func (l *Ledger) ApplyAvailability(ctx context.Context, propertyID string, bookable *bool, entries []OverrideInput) (*OverrideResult, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	if _, err := l.properties.GetAvailability(ctx, propertyID); err != nil {
		return nil, err
	}

	result := &OverrideResult{Applied: []string{}, Skipped: []string{}}
	order, overrides := l.resolveOverrides(propertyID, entries, result)
	if bookable == nil && len(overrides) == 0 {
		return result, nil
	}

	if err := l.properties.ApplyAvailability(ctx, propertyID, bookable, overrides); err != nil {
		return nil, fmt.Errorf("save availability: %w", err)
	}
	result.Applied = order
	l.Invalidate(ctx, propertyID)
	return result, nil
}

// resolveOverrides parses entries into one override per day, keeping the
// order in which days first appear.
func (l *Ledger) resolveOverrides(propertyID string, entries []OverrideInput, result *OverrideResult) ([]string, []domain.DateOverride) {
	byDay := make(map[string]domain.DateOverride, len(entries))
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		day, err := ParseDay(entry.Date)
		if err != nil {
			log.Printf("[ledger] skipping override for property %s: %v", propertyID, err)
			result.Skipped = append(result.Skipped, entry.Date)
			continue
		}
		key := DayKey(day)
		if _, seen := byDay[key]; !seen {
			order = append(order, key)
		}
		byDay[key] = domain.DateOverride{Date: day, IsAvailable: entry.IsAvailable}
	}

	overrides := make([]domain.DateOverride, 0, len(order))
	for _, key := range order {
		overrides = append(overrides, byDay[key])
	}
	return order, overrides
}

// UnavailableDates is the union of booked nights and false overrides as
// sorted day-keys. It does not fold in IsBookable; callers read that flag
// from the result.
func (l *Ledger) UnavailableDates(ctx context.Context, propertyID string) (*UnavailableSet, error) {
	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	if l.cache != nil {
		cached, err := l.cache.GetUnavailableDates(ctx, propertyID)
		if err != nil {
			log.Printf("[ledger] cache read for property %s: %v", propertyID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	property, err := l.properties.GetAvailability(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	bookings, err := l.bookings.ListConsuming(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	set := make(map[string]struct{})
	for _, b := range bookings {
		if !b.ConsumesAvailability() {
			continue
		}
		for _, day := range ExpandRange(b.CheckIn, b.CheckOut) {
			set[DayKey(day)] = struct{}{}
		}
	}
	for _, o := range property.Availability {
		if !o.IsAvailable {
			set[DayKey(o.Date)] = struct{}{}
		}
	}

	dates := make([]string, 0, len(set))
	for key := range set {
		dates = append(dates, key)
	}
	sort.Strings(dates)

	result := &UnavailableSet{PropertyID: propertyID, IsBookable: property.IsBookable, Dates: dates}
	if l.cache != nil {
		if err := l.cache.SetUnavailableDates(ctx, result); err != nil {
			log.Printf("[ledger] cache write for property %s: %v", propertyID, err)
		}
	}
	return result, nil
}

// Calendar resolves each day in [from, to) in precedence order: property
// switch, booked night, explicit override, default available.
func (l *Ledger) Calendar(ctx context.Context, propertyID string, from, to time.Time) ([]DayState, error) {
	if err := ValidateRange(from, to); err != nil {
		return nil, err
	}
	days := ExpandRange(from, to)
	if len(days) > maxCalendarSpan {
		return nil, fmt.Errorf("%w: calendar span exceeds %d days", ErrInvalidRange, maxCalendarSpan)
	}

	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	property, err := l.properties.GetAvailability(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	bookings, err := l.bookings.ListConsuming(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	booked := make(map[string]struct{})
	for _, b := range bookings {
		if !b.ConsumesAvailability() {
			continue
		}
		for _, day := range ExpandRange(b.CheckIn, b.CheckOut) {
			booked[DayKey(day)] = struct{}{}
		}
	}
	overrides := overrideIndex(property.Availability)

	states := make([]DayState, 0, len(days))
	for _, day := range days {
		key := DayKey(day)
		state := DayState{Date: key, Available: true, Reason: ReasonDefault}
		if !property.IsBookable {
			state.Available, state.Reason = false, ReasonNotBookable
		} else if _, ok := booked[key]; ok {
			state.Available, state.Reason = false, ReasonBooked
		} else if available, ok := overrides[key]; ok {
			state.Available, state.Reason = available, ReasonOverride
		}
		states = append(states, state)
	}
	return states, nil
}

// Invalidate drops any cached unavailable-date set for the property.
func (l *Ledger) Invalidate(ctx context.Context, propertyID string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.InvalidateUnavailableDates(ctx, propertyID); err != nil {
		log.Printf("[ledger] cache invalidate for property %s: %v", propertyID, err)
	}
}

func conflicting(bookings []domain.Booking, checkIn, checkOut time.Time) []domain.Booking {
	var out []domain.Booking
	for _, b := range bookings {
		if !b.ConsumesAvailability() {
			continue
		}
		if overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut) {
			out = append(out, b)
		}
	}
	return out
}

// overrideIndex keys overrides by day. Stored lists may predate
// normalization and hold duplicates; a false entry wins over a true one.
func overrideIndex(overrides []domain.DateOverride) map[string]bool {
	index := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		key := DayKey(o.Date)
		if current, ok := index[key]; ok && !current {
			continue
		}
		index[key] = o.IsAvailable
	}
	return index
}
