package core

import (
	"fmt"
	"time"
)

// ThisWeekLabel is the label of the default range.
const ThisWeekLabel = "本週"

// DateRange is an inclusive time window used to filter the active ledger.
type DateRange struct {
	Start time.Time
	End   time.Time
	Label string
}

// ThisWeek returns Monday 00:00:00 through Sunday 23:59:59.999999999 of the
// week containing now, in now's location.
func ThisWeek(now time.Time) DateRange {
	offset := (int(now.Weekday()) + 6) % 7 // days since Monday
	monday := DateOf(now).AddDate(0, 0, -offset)
	start := Date{Time: monday}
	end := Date{Time: monday.AddDate(0, 0, 6)}
	return DateRange{
		Start: start.Midnight(now.Location()),
		End:   endOfDay(end, now.Location()),
		Label: ThisWeekLabel,
	}
}

// NewDateRange spans whole days from start through end in loc.
func NewDateRange(start, end Date, loc *time.Location, label string) (DateRange, error) {
	if start.After(end.Time) {
		return DateRange{}, fmt.Errorf("range %s..%s: %w", start, end, ErrInvalidPeriod)
	}
	if label == "" {
		label = start.Format("1/2") + " - " + end.Format("1/2")
	}
	return DateRange{
		Start: start.Midnight(loc),
		End:   endOfDay(end, loc),
		Label: label,
	}, nil
}

// Contains reports whether t lies within the range, both ends inclusive.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns the number of calendar days covered.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start)/(24*time.Hour)) + 1
}

func endOfDay(d Date, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}
