package watchdog

import "time"

// AlertState remembers when the last alert went out. The zero value is unset.
// It is owned by a single Watchdog and never shared.
type AlertState struct {
	lastAlert time.Time
}

// IsSet reports whether an alert has been stamped since the last reset.
func (s AlertState) IsSet() bool {
	return !s.lastAlert.IsZero()
}

// LastAlert returns the stamped time, or the zero time when unset.
func (s AlertState) LastAlert() time.Time {
	return s.lastAlert
}

// Stamp records a successfully dispatched alert at now.
func (s *AlertState) Stamp(now time.Time) {
	s.lastAlert = now
}

// Reset clears the state so the next problem starts a fresh cooldown window.
func (s *AlertState) Reset() {
	s.lastAlert = time.Time{}
}

// ShouldAlert reports whether an alert may fire at now. An alert exactly at
// the cooldown boundary is still suppressed.
func ShouldAlert(state AlertState, now time.Time, cooldown time.Duration) bool {
	if !state.IsSet() {
		return true
	}
	return now.Sub(state.lastAlert) > cooldown
}
