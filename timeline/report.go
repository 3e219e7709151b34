package timeline

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// WarningCode classifies a recovered data-quality issue.
type WarningCode string

const (
	// WarnInvalidInterval is an interval with start > stop, dropped
	WarnInvalidInterval WarningCode = "invalid_interval"

	// WarnIterationCap is a fixed-point loop stopping at its cap
	WarnIterationCap WarningCode = "iteration_cap"

	// WarnUnresolvedOverlap is an overlap surviving resolution
	WarnUnresolvedOverlap WarningCode = "unresolved_overlap"

	// WarnMultiwayOverlap is three or more intervals overlapping at once
	// under a pairwise policy
	WarnMultiwayOverlap WarningCode = "multiway_overlap"

	// WarnIDMismatch is a person dropped from an intersection because an
	// input timeline does not carry them
	WarnIDMismatch WarningCode = "id_mismatch"

	// WarnEventOutsideTimeline is an event dated before a person's first
	// interval; the person is dropped
	WarnEventOutsideTimeline WarningCode = "event_outside_timeline"

	// WarnNoWindow is an interval or event for a person with no study
	// window, dropped
	WarnNoWindow WarningCode = "no_window"
)

// Warning is one recovered data-quality issue. Warnings never change
// output semantics beyond their documented recovery action.
type Warning struct {
	Code     WarningCode `json:"code"`
	PersonID string      `json:"person_id,omitempty"`
	Message  string      `json:"message"`
	Count    int         `json:"count"`
}

// Summary holds the run-level statistics returned alongside output.
type Summary struct {
	Persons        int     `json:"persons"`
	Intervals      int     `json:"intervals"`
	TotalDays      int64   `json:"total_days"`
	ExposedDays    int64   `json:"exposed_days"`
	UnexposedDays  int64   `json:"unexposed_days"`
	PercentExposed float64 `json:"percent_exposed"`
}

// Report accumulates warnings across a run and carries the run identity
// and summary. Stages append to it; it is surfaced whole at the end.
// Safe for concurrent use so person-batches may run in parallel.
type Report struct {
	RunID string

	mu       sync.Mutex
	warnings []Warning
	summary  Summary
}

// NewReport creates a report with a fresh run ID.
func NewReport() *Report {
	return &Report{RunID: uuid.NewString()}
}

// Warnf records a warning with a formatted message. Repeated warnings
// with the same code and person collapse into one entry with a count.
func (r *Report) Warnf(code WarningCode, personID, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	for i := range r.warnings {
		if r.warnings[i].Code == code && r.warnings[i].PersonID == personID {
			r.warnings[i].Count++
			return
		}
	}
	r.warnings = append(r.warnings, Warning{Code: code, PersonID: personID, Message: msg, Count: 1})
}

// Warnings returns a copy of the accumulated warnings.
func (r *Report) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Warning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// HasWarnings reports whether any warning was recorded.
func (r *Report) HasWarnings() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings) > 0
}

// SetSummary stores the run summary.
func (r *Report) SetSummary(s Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = s
}

// Summary returns the stored run summary.
func (r *Report) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// Summarize computes person-time statistics over a final timeline.
// Reference-labeled days count as unexposed.
func Summarize(ivs []Interval, reference float64) Summary {
	persons := make(map[string]bool)
	var s Summary
	for _, iv := range ivs {
		persons[iv.PersonID] = true
		s.Intervals++
		s.TotalDays += iv.Length()
		if iv.Label == reference {
			s.UnexposedDays += iv.Length()
		} else {
			s.ExposedDays += iv.Length()
		}
	}
	s.Persons = len(persons)
	if s.TotalDays > 0 {
		s.PercentExposed = 100 * float64(s.ExposedDays) / float64(s.TotalDays)
	}
	return s
}

// SummarizeDerived computes the same statistics over derived intervals.
func SummarizeDerived(ds []Derived, reference float64) Summary {
	ivs := make([]Interval, len(ds))
	for i, d := range ds {
		ivs[i] = d.Interval
	}
	return Summarize(ivs, reference)
}
