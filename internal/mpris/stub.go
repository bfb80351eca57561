//go:build !linux

package mpris

import "github.com/llehouerou/wavecast/internal/player"

// Adapter is a no-op Surface on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ player.Interface) (*Adapter, error) {
	return &Adapter{}, nil
}

// SetMetadata is a no-op on non-Linux platforms.
func (a *Adapter) SetMetadata(_ Metadata) {}

// SetActionHandlers is a no-op on non-Linux platforms.
func (a *Adapter) SetActionHandlers(_ Handlers) {}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}

var _ Surface = (*Adapter)(nil)
