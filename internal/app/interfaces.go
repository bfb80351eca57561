package app

import (
	"context"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/playlist"
	"github.com/llehouerou/wavecast/internal/session"
)

// Session is the part of the session controller the UI drives.
type Session interface {
	Snapshot() session.Snapshot
	Updates() <-chan struct{}

	OpenLocation(ctx context.Context, address string) (session.Opened, error)
	OpenFeed(ctx context.Context, address, episodeID string) error
	Refresh(ctx context.Context) error

	Next() bool
	Prev() bool
	Select(id string) bool
	Clear() bool
	SetOrder(order playlist.Order)
	TogglePlay()
	SetRate(rate float64)

	KnownFeeds() []feed.Known
	RemoveFeed(address string)
}

var _ Session = (*session.Controller)(nil)
