package hlog

import (
	"fmt"
	"os"

	"golang.org/x/time/rate"
)

// ProgressReporter gates how often the search may emit a progress line,
// so a deep, fast-running recursion doesn't spend more time logging than
// mining. Called from efim's runSearch fan-out at every recursion depth —
// never from calcUtilityAndNextDB/calcUpperBoundsImpl, which must never
// suspend (spec.md §5).
type ProgressReporter struct {
	limiter *rate.Limiter
}

// NewProgressReporter allows at most one line every interval, defined in
// events per second.
func NewProgressReporter(perSecond float64) *ProgressReporter {
	return &ProgressReporter{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Maybe prints line() if the rate limiter currently allows it; the
// callback is not evaluated at all when it's dropped, so building the
// line itself never costs more than the Allow() check.
func (p *ProgressReporter) Maybe(line func() string) {
	if p.limiter.Allow() {
		fmt.Fprintln(os.Stderr, line())
	}
}
