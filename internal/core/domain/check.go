package domain

import "time"

// AlertOutcome records what the alert path did during a cycle.
type AlertOutcome string

const (
	AlertNone       AlertOutcome = "none"
	AlertSent       AlertOutcome = "sent"
	AlertFailed     AlertOutcome = "failed"
	AlertSuppressed AlertOutcome = "suppressed"
)

// Check is the record of one watchdog cycle.
type Check struct {
	ID           string        `json:"id"`
	CheckedAt    time.Time     `json:"checked_at"`
	Verdict      VerdictKind   `json:"verdict"`
	LocalHeight  uint64        `json:"local_height"`
	RemoteHeight uint64        `json:"remote_height"`
	Lag          uint64        `json:"lag"`
	Lead         uint64        `json:"lead"`
	Cause        string        `json:"cause,omitempty"`
	Alert        AlertOutcome  `json:"alert"`
	Duration     time.Duration `json:"duration"`
}

// NewCheck builds a check record from a verdict.
func NewCheck(id string, at time.Time, v Verdict) Check {
	c := Check{
		ID:           id,
		CheckedAt:    at,
		Verdict:      v.Kind,
		LocalHeight:  v.Local,
		RemoteHeight: v.Remote,
		Lag:          v.Lag,
		Lead:         v.Lead,
		Alert:        AlertNone,
	}
	if v.Cause != nil {
		c.Cause = v.Cause.Error()
	}
	return c
}

// Healthy reports whether the recorded verdict was Synced.
func (c Check) Healthy() bool {
	return c.Verdict == VerdictSynced
}
