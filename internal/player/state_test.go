package player

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Stopped, "Stopped"},
		{Loading, "Loading"},
		{Playing, "Playing"},
		{Paused, "Paused"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_IsActive(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{Stopped, false},
		{Loading, true},
		{Playing, true},
		{Paused, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.IsActive(); got != tt.want {
				t.Errorf("State.IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_CanPause(t *testing.T) {
	for _, s := range []State{Loading, Playing} {
		if !s.CanPause() {
			t.Errorf("%v.CanPause() = false, want true", s)
		}
	}
	for _, s := range []State{Stopped, Paused} {
		if s.CanPause() {
			t.Errorf("%v.CanPause() = true, want false", s)
		}
	}
}
