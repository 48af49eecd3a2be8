package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the day-key format handed to calendar clients.
const DayLayout = "2006-01-02"

var ErrInvalidRange = errors.New("invalid date range")

var parseLayouts = []string{
	DayLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Day strips the time of day. Instants are read in UTC so that a stored
// timestamp and a client-supplied date land on the same day-key.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func DayKey(t time.Time) string {
	return Day(t).Format(DayLayout)
}

// ParseDay accepts a bare day-key or a full timestamp and returns the day.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// ExpandRange returns every day in [start, endExclusive) in calendar order.
// A reversed or empty range yields nil.
func ExpandRange(start, endExclusive time.Time) []time.Time {
	from, to := Day(start), Day(endExclusive)
	if !from.Before(to) {
		return nil
	}
	days := make([]time.Time, 0, int(to.Sub(from).Hours()/24))
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ValidateRange rejects zero dates and ranges that are not strictly
// increasing once normalized to days.
func ValidateRange(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return fmt.Errorf("%w: check-in and check-out are required", ErrInvalidRange)
	}
	if !Day(checkIn).Before(Day(checkOut)) {
		return fmt.Errorf("%w: check-out must be after check-in", ErrInvalidRange)
	}
	return nil
}

// ParseRange parses and validates a pair of client-supplied dates.
func ParseRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := ParseDay(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-in: %v", ErrInvalidRange, err)
	}
	out, err := ParseDay(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-out: %v", ErrInvalidRange, err)
	}
	if err := ValidateRange(in, out); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

// Nights is the number of nights in a validated range.
func Nights(checkIn, checkOut time.Time) int {
	return len(ExpandRange(checkIn, checkOut))
}

// overlaps is the booking conflict test. Both boundaries are inclusive, so a
// stay ending on the day another begins still conflicts.
// TODO: confirm with the property owner whether same-day turnover should be allowed.
func overlaps(existingIn, existingOut, requestedIn, requestedOut time.Time) bool {
	return !Day(existingIn).After(Day(requestedOut)) && !Day(existingOut).Before(Day(requestedIn))
}
