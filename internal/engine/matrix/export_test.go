package matrix

import "time"

// SetClock replaces the clock used for outcome durations and record timestamps.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}
