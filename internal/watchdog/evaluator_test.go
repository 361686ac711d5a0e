package watchdog

import (
	"errors"
	"testing"

	"github.com/vietddude/ethalive/internal/core/domain"
)

func TestEvaluate(t *testing.T) {
	errDown := errors.New("connection refused")

	tests := []struct {
		name      string
		local     Result
		remote    Result
		threshold uint64
		want      domain.VerdictKind
		wantLag   uint64
		wantLead  uint64
	}{
		{"synced equal", Result{Height: 100}, Result{Height: 100}, 3, domain.VerdictSynced, 0, 0},
		{"synced under threshold", Result{Height: 98}, Result{Height: 100}, 3, domain.VerdictSynced, 2, 0},
		{"lag at threshold", Result{Height: 97}, Result{Height: 100}, 3, domain.VerdictLagging, 3, 0},
		{"lagging", Result{Height: 96}, Result{Height: 100}, 3, domain.VerdictLagging, 4, 0},
		{"local ahead", Result{Height: 100}, Result{Height: 90}, 3, domain.VerdictLocalAhead, 0, 10},
		{"remote down", Result{Height: 100}, Result{Err: errDown}, 3, domain.VerdictRemoteUnreachable, 0, 0},
		{"both down", Result{Err: errDown}, Result{Err: errDown}, 3, domain.VerdictRemoteUnreachable, 0, 0},
		{"local down", Result{Err: errDown}, Result{Height: 100}, 3, domain.VerdictLocalUnreachable, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.local, tt.remote, tt.threshold)
			if v.Kind != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, v.Kind)
			}
			if v.Lag != tt.wantLag {
				t.Errorf("expected lag %d, got %d", tt.wantLag, v.Lag)
			}
			if v.Lead != tt.wantLead {
				t.Errorf("expected lead %d, got %d", tt.wantLead, v.Lead)
			}
		})
	}
}

func TestEvaluate_Boundaries(t *testing.T) {
	for threshold := uint64(1); threshold <= 10; threshold++ {
		for lag := uint64(0); lag <= 12; lag++ {
			v := Evaluate(Result{Height: 1000 - lag}, Result{Height: 1000}, threshold)
			want := domain.VerdictSynced
			if lag >= threshold {
				want = domain.VerdictLagging
			}
			if v.Kind != want {
				t.Errorf("threshold=%d lag=%d: expected %s, got %s", threshold, lag, want, v.Kind)
			}
		}
	}
}

func TestEvaluate_CausePreserved(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	v := Evaluate(Result{Err: cause}, Result{Height: 5}, 3)
	if !errors.Is(v.Cause, cause) {
		t.Errorf("expected cause to be preserved, got %v", v.Cause)
	}
	if !v.Alertable() {
		t.Error("expected local unreachable to be alertable")
	}
}
