package domain

import "fmt"

// VerdictKind classifies one comparison of the local and remote chain heads.
type VerdictKind string

const (
	VerdictSynced            VerdictKind = "synced"
	VerdictLagging           VerdictKind = "lagging"
	VerdictLocalAhead        VerdictKind = "local_ahead"
	VerdictRemoteUnreachable VerdictKind = "remote_unreachable"
	VerdictLocalUnreachable  VerdictKind = "local_unreachable"
)

// Verdict is the result of a single health evaluation. Only the fields
// relevant to Kind are set: Lag for Synced/Lagging, Lead for LocalAhead,
// Cause for the unreachable kinds.
type Verdict struct {
	Kind   VerdictKind
	Local  uint64
	Remote uint64
	Lag    uint64
	Lead   uint64
	Cause  error
}

// Healthy reports whether the local node is in sync.
func (v Verdict) Healthy() bool {
	return v.Kind == VerdictSynced
}

// Alertable reports whether the verdict describes a local node problem.
func (v Verdict) Alertable() bool {
	return v.Kind == VerdictLagging || v.Kind == VerdictLocalUnreachable
}

// String returns the status line logged for every cycle.
func (v Verdict) String() string {
	switch v.Kind {
	case VerdictSynced:
		return fmt.Sprintf("Synced! [Lag: %d] | Local: %d | Remote: %d", v.Lag, v.Local, v.Remote)
	case VerdictLagging:
		return fmt.Sprintf("Node lagging! [Lag: %d] | Local: %d | Remote: %d", v.Lag, v.Local, v.Remote)
	case VerdictLocalAhead:
		return fmt.Sprintf("Local is ahead (or remote is behind) [Lead: %d] | Local: %d | Remote: %d",
			v.Lead, v.Local, v.Remote)
	case VerdictRemoteUnreachable:
		return fmt.Sprintf("FAILED to fetch Remote RPC: %v", v.Cause)
	case VerdictLocalUnreachable:
		return fmt.Sprintf("LOCAL NODE DOWN: %v", v.Cause)
	default:
		return string(v.Kind)
	}
}

// AlertMessage returns the text sent to the alert channel.
func (v Verdict) AlertMessage(threshold uint64) string {
	switch v.Kind {
	case VerdictLagging:
		return fmt.Sprintf("⚠️ **Node lagging** by %d blocks (threshold %d) | Local: %d | Remote: %d",
			v.Lag, threshold, v.Local, v.Remote)
	case VerdictLocalUnreachable:
		return fmt.Sprintf("🚨 **Local node down**: %v", v.Cause)
	case VerdictRemoteUnreachable:
		return fmt.Sprintf("⚠️ **Remote reference node unreachable**: %v", v.Cause)
	default:
		return v.String()
	}
}
