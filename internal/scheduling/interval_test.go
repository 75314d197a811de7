package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 6, 1, hour, min, 0, 0, time.UTC)
}

func TestIntervalOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"partial overlap", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 30), at(10, 30)}, true},
		{"contained", Interval{at(9, 0), at(12, 0)}, Interval{at(10, 0), at(11, 0)}, true},
		{"identical", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 0), at(10, 0)}, true},
		{"touching end", Interval{at(9, 0), at(9, 15)}, Interval{at(9, 15), at(9, 30)}, false},
		{"touching start", Interval{at(9, 15), at(9, 30)}, Interval{at(9, 0), at(9, 15)}, false},
		{"disjoint", Interval{at(9, 0), at(10, 0)}, Interval{at(14, 0), at(15, 0)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			// Overlap is symmetric.
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a))
		})
	}
}
