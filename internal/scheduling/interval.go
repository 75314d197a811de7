package scheduling

import "time"

// Interval is a half-open time range [Start, End).  All interval
// comparisons in the scheduling core go through Overlaps so the
// boundary semantics stay in exactly one place.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect.  The
// inequalities are strict on both sides: a booking ending at 09:15
// does not overlap one starting at 09:15.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}
