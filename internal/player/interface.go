// internal/player/interface.go
package player

import (
	"errors"
	"time"
)

// ErrNoSource is returned by Play when no source is set.
var ErrNoSource = errors.New("no audio source")

// Interface is an audio sink modelled on a media element: a settable source,
// transport calls, a read/write position and rate, and an autoplay flag.
//
// Handlers registered with On* replace any previous handler; nil clears it.
// They are never called with internal locks held.
type Interface interface {
	SetSource(url string)
	Source() string
	// Play starts or resumes playback. Loading may continue asynchronously;
	// later failures go to the error handler.
	Play() error
	Pause()
	// Load resets the sink to the start of its source and stops playback.
	Load()
	State() State
	Position() time.Duration
	SetPosition(d time.Duration)
	Duration() time.Duration
	Rate() float64
	// SetRate changes the playback rate and fires the rate handler.
	SetRate(rate float64)
	Autoplay() bool
	SetAutoplay(on bool)
	OnEnded(fn func())
	OnRateChange(fn func(rate float64))
	OnError(fn func(err error))
}

// Rate bounds accepted by SetRate.
const (
	MinRate = 0.25
	MaxRate = 4.0
)

// ClampRate bounds rate to [MinRate, MaxRate]; non-positive rates become 1.
func ClampRate(rate float64) float64 {
	switch {
	case rate <= 0:
		return 1
	case rate < MinRate:
		return MinRate
	case rate > MaxRate:
		return MaxRate
	}
	return rate
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
