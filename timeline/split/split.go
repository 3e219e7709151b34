// Package split cuts derived timelines at per-person event dates and
// assigns terminal status codes, rescaling designated cumulative
// covariates in proportion to the cut.
package split

import (
	"sort"

	"github.com/tpcopeland/survtime/errors"
	"github.com/tpcopeland/survtime/logger"
	"github.com/tpcopeland/survtime/timeline"
)

// Mode selects how events cut the timeline.
type Mode string

const (
	// ModeSingle truncates follow-up at the earliest effective event
	ModeSingle Mode = "single"

	// ModeRecurring splits at every declared event and keeps the full
	// follow-up. Competing events have no meaning without truncation,
	// so recurring mode rejects them.
	ModeRecurring Mode = "recurring"
)

// Options controls the event split.
type Options struct {
	Mode Mode

	// RescaleValue rescales Value on a cut interval by the cut's share
	// of the original length
	RescaleValue bool

	// RescaleByCategory rescales the per-category accumulators the same
	// way
	RescaleByCategory bool
}

// AtEvents cuts each person's timeline at their event dates. In single
// mode only the earliest event counts: the timeline is truncated there
// and the terminal interval carries the event's kind as status. Persons
// without an event keep their full timeline censored. An event dated
// before a person's timeline drops that person with a warning; an event
// dated after it censors them with a warning.
func AtEvents(ds []timeline.Derived, events []timeline.Event, opts Options, report *timeline.Report) ([]timeline.Derived, error) {
	if opts.Mode == "" {
		opts.Mode = ModeSingle
	}
	if opts.Mode != ModeSingle && opts.Mode != ModeRecurring {
		return nil, errors.NewConfigurationError("unknown event mode %q", opts.Mode)
	}
	if opts.Mode == ModeRecurring {
		for _, ev := range events {
			if ev.Kind >= 2 {
				return nil, errors.NewConfigurationError(
					"recurring events cannot be combined with competing events (person %s)", ev.PersonID)
			}
		}
	}

	byPerson := make(map[string][]timeline.Event)
	for _, ev := range events {
		byPerson[ev.PersonID] = append(byPerson[ev.PersonID], ev)
	}
	for _, evs := range byPerson {
		sort.Slice(evs, func(i, j int) bool {
			if evs[i].Date != evs[j].Date {
				return evs[i].Date < evs[j].Date
			}
			return evs[i].Kind < evs[j].Kind
		})
	}

	ids, groups := timeline.DerivedByPerson(ds)
	var out []timeline.Derived
	dropped := 0

	for _, id := range ids {
		group := groups[id]
		evs := byPerson[id]
		if len(evs) == 0 {
			out = append(out, group...)
			continue
		}

		var kept []timeline.Derived
		if opts.Mode == ModeSingle {
			kept = truncateAt(group, evs[0], opts, report)
		} else {
			kept = splitRecurring(group, evs, opts, report)
		}
		if kept == nil {
			dropped++
			continue
		}
		out = append(out, kept...)
	}

	timeline.SortDerived(out)
	if dropped > 0 {
		logger.Debugw("dropped persons with pre-timeline events", "persons", dropped)
	}
	return out, nil
}

// truncateAt cuts one person's timeline at the earliest event. Returns
// nil when the event predates the timeline and the person is dropped.
func truncateAt(group []timeline.Derived, ev timeline.Event, opts Options, report *timeline.Report) []timeline.Derived {
	first, last := group[0], group[len(group)-1]

	if ev.Date < first.Start {
		report.Warnf(timeline.WarnEventOutsideTimeline, ev.PersonID,
			"event on day %d predates timeline start %d, person dropped", ev.Date, first.Start)
		return nil
	}
	if ev.Date > last.Stop {
		report.Warnf(timeline.WarnEventOutsideTimeline, ev.PersonID,
			"event on day %d is after timeline end %d, censored", ev.Date, last.Stop)
		return append([]timeline.Derived(nil), group...)
	}

	var kept []timeline.Derived
	for _, d := range group {
		if d.Start > ev.Date {
			break
		}
		if d.Stop > ev.Date {
			d = cutTo(d, ev.Date, opts)
		}
		kept = append(kept, d)
	}
	kept[len(kept)-1].Status = ev.Kind
	return kept
}

// splitRecurring cuts at every event date without truncating. Each
// interval ending on an event day carries status 1.
func splitRecurring(group []timeline.Derived, evs []timeline.Event, opts Options, report *timeline.Report) []timeline.Derived {
	first, last := group[0], group[len(group)-1]

	eventDays := make(map[timeline.Day]bool, len(evs))
	for _, ev := range evs {
		if ev.Date < first.Start || ev.Date > last.Stop {
			report.Warnf(timeline.WarnEventOutsideTimeline, ev.PersonID,
				"event on day %d is outside timeline [%d, %d], skipped", ev.Date, first.Start, last.Stop)
			continue
		}
		eventDays[ev.Date] = true
	}

	var kept []timeline.Derived
	for _, d := range group {
		origLen := d.Length()
		segStart := d.Start
		days := sortedDays(eventDays, d.Start, d.Stop-1)
		for _, day := range days {
			piece := d
			piece.Start = segStart
			piece.Stop = day
			piece = rescaled(piece, origLen, opts)
			piece.Status = 1
			kept = append(kept, piece)
			segStart = day + 1
		}
		tail := d
		tail.Start = segStart
		if tail.Length() != origLen {
			tail = rescaled(tail, origLen, opts)
		}
		if eventDays[tail.Stop] {
			tail.Status = 1
		}
		kept = append(kept, tail)
	}
	return kept
}

// cutTo shortens an interval to end on day and rescales its cumulative
// covariates by the kept share.
func cutTo(d timeline.Derived, day timeline.Day, opts Options) timeline.Derived {
	origLen := d.Length()
	d.Stop = day
	return rescaled(d, origLen, opts)
}

func rescaled(d timeline.Derived, origLen int64, opts Options) timeline.Derived {
	f := float64(d.Length()) / float64(origLen)
	if opts.RescaleValue {
		d.Value *= f
	}
	if opts.RescaleByCategory && d.ByCategory != nil {
		scaled := make(map[int64]float64, len(d.ByCategory))
		for k, v := range d.ByCategory {
			scaled[k] = v * f
		}
		d.ByCategory = scaled
	}
	return d
}

// sortedDays returns the event days within [lo, hi] in ascending order.
// The upper bound excludes an interval's last day: a cut there leaves
// the interval whole.
func sortedDays(set map[timeline.Day]bool, lo, hi timeline.Day) []timeline.Day {
	var days []timeline.Day
	for d := range set {
		if lo <= d && d <= hi {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}
