// internal/game/timer.go
package game

import "time"

// actionTimer is the session's uniform cancellable delay. Every timed window
// (nope resolution, explosion countdown, favor and choice timeouts) schedules
// through one of these instead of ad-hoc AfterFunc closures.
//
// Each Schedule bumps a sequence number; the fired callback receives the
// sequence it was scheduled under and must validate it against the timer
// after re-acquiring the session lock. A timer that was canceled or
// superseded between firing and lock acquisition therefore becomes a no-op,
// which is what makes a Defuse racing its own explosion timeout safe.
//
// All methods assume the session lock is held.
type actionTimer struct {
	timer *time.Timer
	seq   uint64
}

// schedule arms the timer, superseding any earlier schedule, and returns the
// sequence the callback must present. fire runs on the timer goroutine and is
// responsible for taking the session lock itself.
func (t *actionTimer) schedule(d time.Duration, fire func(seq uint64)) uint64 {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.seq++
	seq := t.seq
	t.timer = time.AfterFunc(d, func() {
		fire(seq)
	})
	return seq
}

// cancel stops the armed timer and invalidates every outstanding sequence.
func (t *actionTimer) cancel() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
}

// active reports whether the given sequence is still the live schedule.
func (t *actionTimer) active(seq uint64) bool {
	return t.timer != nil && t.seq == seq
}
