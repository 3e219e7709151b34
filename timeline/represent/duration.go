package represent

import (
	"math"

	"github.com/tpcopeland/survtime/timeline"
)

// durationScanner buckets each interval by the cumulative exposed time
// at its start. An exposed interval that carries the cumulative total
// across a cutpoint is split at the first day of the higher band,
// computed in exact day counts.
type durationScanner struct {
	exposed func(float64) bool
	cuts    []float64
	divisor float64

	cumDays int64
}

func (s *durationScanner) splits(iv timeline.Interval) []timeline.Day {
	if !s.exposed(iv.Label) {
		return nil
	}
	var out []timeline.Day
	// zero is the implicit boundary out of the never band
	for _, cut := range append([]float64{0}, s.cuts...) {
		d := iv.Start + crossingOffset(cut, s.divisor, s.cumDays)
		if iv.Start < d && d <= iv.Stop {
			out = append(out, d)
		}
	}
	s.cumDays += iv.Length()
	return out
}

func (s *durationScanner) segment(iv timeline.Interval) (float64, float64) {
	label := bucket(float64(s.cumDays)/s.divisor, s.cuts)
	if s.exposed(iv.Label) {
		s.cumDays += iv.Length()
	}
	return label, float64(s.cumDays) / s.divisor
}

// crossingOffset is the day offset from an exposed interval's start to
// the first day whose cumulative-at-start strictly exceeds the cut.
// Non-positive when the cut was already passed before the interval.
func crossingOffset(cut, divisor float64, cumDays int64) timeline.Day {
	cutDays := cut*divisor + timeline.Epsilon*divisor
	return timeline.Day(math.Floor(cutDays-float64(cumDays))) + 1
}

// cumulativeScanner carries the running exposed-time total. Each
// interval's label and value are the cumulative at its end, in units,
// so the label is continuous rather than categorical and intervals
// never split.
type cumulativeScanner struct {
	exposed func(float64) bool
	divisor float64

	cumDays int64
}

func (s *cumulativeScanner) splits(iv timeline.Interval) []timeline.Day {
	if s.exposed(iv.Label) {
		s.cumDays += iv.Length()
	}
	return nil
}

func (s *cumulativeScanner) segment(iv timeline.Interval) (float64, float64) {
	if s.exposed(iv.Label) {
		s.cumDays += iv.Length()
	}
	v := float64(s.cumDays) / s.divisor
	return v, v
}
