// Package app is the terminal front end: a bubbletea model over the session.
package app

import (
	"time"

	"github.com/llehouerou/wavecast/internal/playback"
	"github.com/llehouerou/wavecast/internal/session"
)

// TickMsg is sent every second to move the progress bar.
type TickMsg time.Time

// SessionUpdatedMsg is sent when the session signals a change.
type SessionUpdatedMsg struct{}

// TrackChangedMsg wraps a playback bridge track change.
type TrackChangedMsg playback.TrackChange

// RateChangedMsg wraps a persisted rate change.
type RateChangedMsg playback.RateChange

// PlaybackErrorMsg wraps a playback bridge error.
type PlaybackErrorMsg playback.ErrorEvent

// StderrMsg carries a line captured from the audio backend.
type StderrMsg string

// OpenedMsg reports the result of opening an address typed by the user or
// picked from the feed list.
type OpenedMsg struct {
	Address string
	Opened  session.Opened
	Err     error
}

// RefreshedMsg reports the result of a feed refresh.
type RefreshedMsg struct {
	Err error
}
