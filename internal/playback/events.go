package playback

import "github.com/llehouerou/wavecast/internal/feed"

// TrackChange is emitted when the bridge binds the sink to a new episode.
//
// Emitted by:
//   - TrackChanged: on every cursor transition, including to no episode
//
// Started reports whether playback was requested (the sink autoplays).
type TrackChange struct {
	Episode *feed.Episode
	Source  string
	Started bool
}

// RateChange is emitted when a sink rate change is persisted for a feed.
type RateChange struct {
	Feed string
	Rate float64
}

// ErrorEvent is emitted when a sink or preference operation fails.
type ErrorEvent struct {
	Operation string // e.g., "play", "save rate"
	Source    string // audio address or feed address
	Err       error
}
