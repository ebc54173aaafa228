package date

import "time"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// Trailing returns the range of the n days ending on 'on'.
func Trailing(on Date, n int) Range { return Range{From: on.Add(-n), To: on} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days covered by the range.
func (r Range) Days() int { return r.To.Sub(r.From) + 1 }

// Times returns the instants bounding the range: midnight UTC of From, and the last
// nanosecond of To.
func (r Range) Times() (from, to time.Time) {
	return r.From.Time(), r.To.Add(1).Time().Add(-time.Nanosecond)
}

func (r Range) String() string { return r.From.String() + "_" + r.To.String() }
