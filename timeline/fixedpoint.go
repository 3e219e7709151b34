package timeline

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/tpcopeland/survtime/logger"
)

// DefaultIterationLimit caps fixed-point loops when no limit is
// configured. Pathological inputs hitting the cap are a data-quality
// concern, not a crash.
const DefaultIterationLimit = 10000

// progressLimiter throttles per-iteration progress logging so a slowly
// converging loop cannot flood the log. One line per second at most.
var progressLimiter = rate.NewLimiter(rate.Every(time.Second), 1)

// FixedPoint runs step until it reports no change, up to limit
// iterations. step returns true when it changed something and another
// pass is needed.
//
// Returns true when the loop converged. On exhaustion it records an
// iteration-cap warning against the report and returns false; callers
// proceed with the partially converged result.
func FixedPoint(stage, personID string, limit int, report *Report, step func() bool) bool {
	if limit <= 0 {
		limit = DefaultIterationLimit
	}

	for i := 0; i < limit; i++ {
		if !step() {
			return true
		}
		if progressLimiter.Allow() {
			logger.Debugw("fixed-point pass",
				"stage", stage,
				"person_id", personID,
				"iterations", i+1,
			)
		}
	}

	report.Warnf(WarnIterationCap, personID,
		"%s did not converge within %d iterations", stage, limit)
	logger.Warnw("fixed-point iteration cap reached",
		"stage", stage,
		"person_id", personID,
		"iterations", limit,
	)
	return false
}
