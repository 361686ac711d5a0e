package watchdog

import (
	"testing"
	"time"
)

func TestShouldAlert(t *testing.T) {
	cooldown := 15 * time.Minute
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var state AlertState
	if !ShouldAlert(state, t0, cooldown) {
		t.Fatal("expected alert when state is unset")
	}

	state.Stamp(t0)
	if ShouldAlert(state, t0, cooldown) {
		t.Error("expected suppression immediately after stamp")
	}
	if ShouldAlert(state, t0.Add(time.Second), cooldown) {
		t.Error("expected suppression within cooldown")
	}
	if ShouldAlert(state, t0.Add(cooldown), cooldown) {
		t.Error("expected suppression exactly at the cooldown boundary")
	}
	if !ShouldAlert(state, t0.Add(cooldown+time.Nanosecond), cooldown) {
		t.Error("expected alert once cooldown is strictly exceeded")
	}
}

func TestAlertState_Reset(t *testing.T) {
	var state AlertState
	now := time.Now()
	state.Stamp(now)
	if !state.IsSet() || !state.LastAlert().Equal(now) {
		t.Fatalf("expected stamped state, got %v", state.LastAlert())
	}

	state.Reset()
	if state.IsSet() {
		t.Error("expected unset state after reset")
	}
	if !ShouldAlert(state, now, time.Hour) {
		t.Error("expected alert to be allowed after reset")
	}
}
