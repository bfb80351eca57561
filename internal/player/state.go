// internal/player/state.go
package player

// State is the sink playback state.
//
//	Stopped ──play──▶ Loading ──ready──▶ Playing ◀──play── Paused
//	   ▲                 │                  │                ▲
//	   └──load / error───┘                  └─────pause──────┘
//
// A natural end of track moves Playing back to Stopped and fires the ended
// handler. Load and SetSource return to Stopped from any state.
type State int

const (
	Stopped State = iota
	Loading
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Loading:
		return "Loading"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a source is loading or loaded.
func (s State) IsActive() bool {
	return s == Loading || s == Playing || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing || s == Loading
}
