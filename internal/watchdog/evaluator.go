package watchdog

import "github.com/vietddude/ethalive/internal/core/domain"

// Result is the outcome of one eth_blockNumber call.
type Result struct {
	Height uint64
	Err    error
}

// Evaluate classifies a pair of head results. The remote node is the source
// of truth, so its failure wins over anything the local node reported.
// A lag equal to threshold counts as Lagging.
func Evaluate(local, remote Result, threshold uint64) domain.Verdict {
	if remote.Err != nil {
		return domain.Verdict{Kind: domain.VerdictRemoteUnreachable, Cause: remote.Err}
	}
	if local.Err != nil {
		return domain.Verdict{
			Kind:   domain.VerdictLocalUnreachable,
			Remote: remote.Height,
			Cause:  local.Err,
		}
	}

	v := domain.Verdict{Local: local.Height, Remote: remote.Height}
	switch {
	case local.Height > remote.Height:
		v.Kind = domain.VerdictLocalAhead
		v.Lead = local.Height - remote.Height
	case remote.Height-local.Height < threshold:
		v.Kind = domain.VerdictSynced
		v.Lag = remote.Height - local.Height
	default:
		v.Kind = domain.VerdictLagging
		v.Lag = remote.Height - local.Height
	}
	return v
}
