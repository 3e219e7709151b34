package represent

import "github.com/tpcopeland/survtime/timeline"

// everScanner labels 0 until the first exposed interval and 1 from
// that interval onward. Ever-treated never reverts, so nothing splits.
type everScanner struct {
	exposed func(float64) bool
	seen    bool
}

func (s *everScanner) splits(iv timeline.Interval) []timeline.Day {
	if s.exposed(iv.Label) {
		s.seen = true
	}
	return nil
}

func (s *everScanner) segment(iv timeline.Interval) (float64, float64) {
	if s.exposed(iv.Label) {
		s.seen = true
	}
	if s.seen {
		return 1, 0
	}
	return 0, 0
}

// currentFormerScanner labels exposed intervals 1 (current), unexposed
// intervals after any exposure 2 (former), and unexposed intervals
// before any exposure 0 (never). With a washout, a former person
// reverts to never once the gap since the last exposure exceeds the
// washout, splitting the unexposed interval at the revert day.
type currentFormerScanner struct {
	exposed func(float64) bool
	washout int64

	seen    bool
	lastEnd timeline.Day
}

func (s *currentFormerScanner) splits(iv timeline.Interval) []timeline.Day {
	if s.exposed(iv.Label) {
		s.seen = true
		s.lastEnd = iv.Stop
		return nil
	}
	if !s.seen || s.washout <= 0 {
		return nil
	}
	revert := s.lastEnd + s.washout + 1
	if iv.Start < revert && revert <= iv.Stop {
		return []timeline.Day{revert}
	}
	return nil
}

func (s *currentFormerScanner) segment(iv timeline.Interval) (float64, float64) {
	if s.exposed(iv.Label) {
		s.seen = true
		s.lastEnd = iv.Stop
		return 1, 0
	}
	if !s.seen {
		return 0, 0
	}
	if s.washout > 0 && iv.Start-s.lastEnd > s.washout {
		s.seen = false
		return 0, 0
	}
	return 2, 0
}
