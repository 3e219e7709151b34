package represent

import (
	"math"

	"github.com/tpcopeland/survtime/timeline"
)

// recencyScanner labels exposed intervals 1 and bands unexposed
// intervals by the gap since the last exposure: 1+bucket(gap) while the
// gap is within the horizon, then the never sentinel 0. Unexposed
// intervals are split wherever the growing gap crosses a cutpoint or
// the horizon.
type recencyScanner struct {
	exposed func(float64) bool
	cuts    []float64
	horizon int64

	seen    bool
	lastEnd timeline.Day
}

func (s *recencyScanner) splits(iv timeline.Interval) []timeline.Day {
	if s.exposed(iv.Label) {
		s.seen = true
		s.lastEnd = iv.Stop
		return nil
	}
	if !s.seen {
		return nil
	}
	var out []timeline.Day
	for _, cut := range s.cuts {
		d := s.lastEnd + timeline.Day(math.Floor(cut+timeline.Epsilon)) + 1
		if iv.Start < d && d <= iv.Stop {
			out = append(out, d)
		}
	}
	if s.horizon < math.MaxInt64 {
		d := s.lastEnd + s.horizon + 1
		if iv.Start < d && d <= iv.Stop {
			out = append(out, d)
		}
	}
	return out
}

func (s *recencyScanner) segment(iv timeline.Interval) (float64, float64) {
	if s.exposed(iv.Label) {
		s.seen = true
		s.lastEnd = iv.Stop
		return 1, 0
	}
	if !s.seen {
		return 0, 0
	}
	gap := iv.Start - s.lastEnd
	if gap > s.horizon {
		s.seen = false
		return 0, 0
	}
	return 1 + bucket(float64(gap), s.cuts), 0
}
