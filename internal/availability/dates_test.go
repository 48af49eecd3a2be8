package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExpandRange_CountsAndOrder(t *testing.T) {
	testCases := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{name: "two nights", start: "2025-06-01", end: "2025-06-03", want: []string{"2025-06-01", "2025-06-02"}},
		{name: "single night", start: "2025-06-01", end: "2025-06-02", want: []string{"2025-06-01"}},
		{name: "across month", start: "2025-01-30", end: "2025-02-02", want: []string{"2025-01-30", "2025-01-31", "2025-02-01"}},
		{name: "leap day", start: "2024-02-28", end: "2024-03-01", want: []string{"2024-02-28", "2024-02-29"}},
		{name: "equal bounds", start: "2025-06-01", end: "2025-06-01", want: nil},
		{name: "reversed", start: "2025-06-03", end: "2025-06-01", want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			days := ExpandRange(day(tc.start), day(tc.end))
			var got []string
			for _, d := range days {
				got = append(got, DayKey(d))
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExpandRange_StepsOneDayAndExcludesEnd(t *testing.T) {
	start, end := day("2025-03-25"), day("2025-04-05")
	days := ExpandRange(start, end)

	require.Len(t, days, int(end.Sub(start).Hours()/24))
	for i := 1; i < len(days); i++ {
		assert.Equal(t, 24*time.Hour, days[i].Sub(days[i-1]))
	}
	assert.NotEqual(t, DayKey(end), DayKey(days[len(days)-1]))
}

func TestExpandRange_StripsTimeOfDay(t *testing.T) {
	start := time.Date(2025, 6, 1, 18, 45, 0, 0, time.UTC)
	end := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)

	days := ExpandRange(start, end)

	require.Len(t, days, 2)
	assert.Equal(t, day("2025-06-01"), days[0])
	assert.Equal(t, day("2025-06-02"), days[1])
}

func TestParseDay(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "day key", input: "2025-06-01", want: "2025-06-01"},
		{name: "rfc3339 utc", input: "2025-06-01T23:10:00Z", want: "2025-06-01"},
		{name: "rfc3339 offset rolls into utc day", input: "2025-06-02T01:00:00+02:00", want: "2025-06-01"},
		{name: "millis", input: "2025-06-01T00:00:00.000Z", want: "2025-06-01"},
		{name: "padded", input: "  2025-06-01 ", want: "2025-06-01"},
		{name: "garbage", input: "not-a-date", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDay(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, DayKey(got))
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	testCases := []struct {
		name     string
		checkIn  string
		checkOut string
	}{
		{name: "equal", checkIn: "2025-06-01", checkOut: "2025-06-01"},
		{name: "reversed", checkIn: "2025-06-05", checkOut: "2025-06-01"},
		{name: "same day different times", checkIn: "2025-06-01T08:00:00Z", checkOut: "2025-06-01T20:00:00Z"},
		{name: "bad check-in", checkIn: "tomorrow", checkOut: "2025-06-01"},
		{name: "missing check-out", checkIn: "2025-06-01", checkOut: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseRange(tc.checkIn, tc.checkOut)
			assert.True(t, errors.Is(err, ErrInvalidRange))
		})
	}
}

func TestNights(t *testing.T) {
	assert.Equal(t, 4, Nights(day("2025-06-01"), day("2025-06-05")))
	assert.Equal(t, 0, Nights(day("2025-06-05"), day("2025-06-01")))
}

func TestOverlaps_InclusiveBoundaries(t *testing.T) {
	in, out := day("2025-06-01"), day("2025-06-05")

	assert.True(t, overlaps(in, out, day("2025-06-03"), day("2025-06-04")), "inside")
	assert.True(t, overlaps(in, out, day("2025-06-05"), day("2025-06-07")), "check-in on existing check-out")
	assert.True(t, overlaps(in, out, day("2025-05-28"), day("2025-06-01")), "check-out on existing check-in")
	assert.False(t, overlaps(in, out, day("2025-06-06"), day("2025-06-08")), "after")
	assert.False(t, overlaps(in, out, day("2025-05-20"), day("2025-05-31")), "before")
}
