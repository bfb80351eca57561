// internal/state/interface.go
package state

import (
	"github.com/llehouerou/wavecast/internal/feed"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	feed.Registry
	GetPlaybackRate(feedAddress string) (float64, error)
	SavePlaybackRate(feedAddress string, rate float64) error
	GetLocation() (string, error)
	SaveLocation(address string) error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
