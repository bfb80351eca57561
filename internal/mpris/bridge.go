package mpris

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/player"
)

// DefaultPreviousThreshold is how far into a track "previous" restarts it
// instead of going to the previous episode.
const DefaultPreviousThreshold = 3 * time.Second

// Navigator moves the selection.
type Navigator interface {
	Next() bool
	Prev() bool
}

// Bridge keeps a Surface in sync with the current podcast and episode.
//
// Every Update clears the previous handler set before registering a new one,
// and handlers from a superseded Update are inert.
type Bridge struct {
	surface   Surface
	sink      player.Interface
	threshold time.Duration
	log       zerolog.Logger

	mu     sync.Mutex
	gen    uint64
	closed bool
}

// NewBridge creates a Bridge. A non-positive threshold uses
// DefaultPreviousThreshold.
func NewBridge(surface Surface, sink player.Interface, threshold time.Duration, logger zerolog.Logger) *Bridge {
	if threshold <= 0 {
		threshold = DefaultPreviousThreshold
	}
	return &Bridge{
		surface:   surface,
		sink:      sink,
		threshold: threshold,
		log:       logger.With().Str("component", "mpris").Logger(),
	}
}

// Update publishes podcast and ep and registers transport handlers driving
// nav and the sink. With a nil podcast or episode the surface is cleared.
func (b *Bridge) Update(podcast *feed.Podcast, ep *feed.Episode, nav Navigator) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.gen++
	b.surface.SetActionHandlers(Handlers{})

	if podcast == nil || ep == nil || nav == nil {
		b.surface.SetMetadata(Metadata{})
		return
	}

	artwork := ep.ImageURL
	if artwork == "" {
		artwork = podcast.ImageURL
	}
	b.surface.SetMetadata(Metadata{
		TrackID:    ep.ID,
		Title:      ep.Title,
		Artist:     podcast.Author,
		Album:      podcast.Title,
		ArtworkURL: artwork,
		Length:     b.sink.Duration(),
	})

	gen := b.gen
	b.surface.SetActionHandlers(Handlers{
		PreviousTrack: b.guard(gen, func() {
			if b.sink.Position() < b.threshold {
				nav.Prev()
				return
			}
			b.sink.SetPosition(0)
		}),
		NextTrack: b.guard(gen, func() { nav.Next() }),
		SeekTo: func(position time.Duration) {
			if b.current(gen) {
				b.sink.SetPosition(position)
			}
		},
		Play: b.guard(gen, func() {
			if err := b.sink.Play(); err != nil {
				b.log.Warn().Err(err).Msg("play from media controls")
			}
		}),
		Pause: b.guard(gen, b.sink.Pause),
	})
}

// Close clears the surface and closes it when it is an io.Closer. Handlers
// registered before are inert and later Updates are ignored.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.gen++
	b.surface.SetActionHandlers(Handlers{})
	b.surface.SetMetadata(Metadata{})
	if c, ok := b.surface.(io.Closer); ok {
		if err := c.Close(); err != nil {
			b.log.Warn().Err(err).Msg("closing media surface")
		}
	}
}

func (b *Bridge) current(gen uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return gen == b.gen
}

func (b *Bridge) guard(gen uint64, fn func()) func() {
	return func() {
		if b.current(gen) {
			fn()
		}
	}
}
