// Package playback drives the audio sink from cursor transitions and keeps
// the sink rate in sync with the per-feed rate preference.
package playback

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavecast/internal/feed"
	"github.com/llehouerou/wavecast/internal/player"
)

// Navigator advances the selection when a track ends.
type Navigator interface {
	Next() bool
}

// RateStore persists the playback rate of each feed.
type RateStore interface {
	GetPlaybackRate(feedAddress string) (float64, error)
	SavePlaybackRate(feedAddress string, rate float64) error
}

// Bridge connects cursor transitions to an audio sink.
//
// Sink failures are logged and published as ErrorEvent; they never reach the
// caller. Only one Navigator may be attached at a time.
type Bridge struct {
	sink  player.Interface
	rates RateStore
	log   zerolog.Logger

	mu   sync.Mutex
	nav  Navigator
	gen  uint64
	feed string
	rate float64

	subsMu sync.Mutex
	subs   []*Subscription
}

// NewBridge creates a Bridge over sink.
func NewBridge(sink player.Interface, rates RateStore, logger zerolog.Logger) *Bridge {
	return &Bridge{
		sink:  sink,
		rates: rates,
		log:   logger.With().Str("component", "playback").Logger(),
		rate:  1,
	}
}

// Sink returns the audio sink.
func (b *Bridge) Sink() player.Interface {
	return b.sink
}

// Attach registers the sink handlers on behalf of nav. The returned release
// clears them; it is safe to call more than once. Attaching again replaces
// the previous registration.
func (b *Bridge) Attach(nav Navigator) (release func()) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.nav = nav
	b.mu.Unlock()

	b.sink.OnEnded(func() { b.handleEnded(gen) })
	b.sink.OnRateChange(func(rate float64) { b.handleRateChange(gen, rate) })
	b.sink.OnError(func(err error) { b.handleError(gen, err) })

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			current := b.gen == gen
			if current {
				b.gen++
				b.nav = nil
			}
			b.mu.Unlock()
			if !current {
				return
			}
			b.sink.OnEnded(nil)
			b.sink.OnRateChange(nil)
			b.sink.OnError(nil)
		})
	}
}

// SetFeed makes address the active feed and applies its stored rate to the
// sink (1.0 when none is stored).
func (b *Bridge) SetFeed(address string) {
	rate := 1.0
	if address != "" && b.rates != nil {
		r, err := b.rates.GetPlaybackRate(address)
		if err != nil {
			b.log.Warn().Err(err).Str("feed", address).Msg("loading playback rate")
		} else {
			rate = player.ClampRate(r)
		}
	}

	b.mu.Lock()
	b.feed = address
	b.rate = rate
	b.mu.Unlock()

	b.sink.SetRate(rate)
}

// SetRate changes the sink rate; the change is persisted for the active feed
// through the sink's rate event.
func (b *Bridge) SetRate(rate float64) {
	b.sink.SetRate(rate)
}

// Rate returns the rate of the active feed.
func (b *Bridge) Rate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rate
}

// TrackChanged binds the sink to ep and starts it when the sink autoplays.
// A nil episode unbinds the sink.
func (b *Bridge) TrackChanged(ep *feed.Episode) {
	if ep == nil {
		b.sink.SetSource("")
		b.broadcast(func(s *Subscription) { s.sendTrack(TrackChange{}) })
		return
	}

	b.sink.SetSource(ep.AudioURL)
	b.sink.SetRate(b.Rate())

	started := false
	if b.sink.Autoplay() {
		if err := b.sink.Play(); err != nil {
			b.log.Warn().Err(err).Object("episode", ep).Msg("starting playback")
			b.publishError("play", ep.AudioURL, err)
		} else {
			started = true
		}
	}

	change := TrackChange{Episode: ep, Source: ep.AudioURL, Started: started}
	b.broadcast(func(s *Subscription) { s.sendTrack(change) })
}

// TogglePlay pauses a playing sink and plays any other.
func (b *Bridge) TogglePlay() {
	if b.sink.State().CanPause() {
		b.sink.Pause()
		return
	}
	b.Play()
}

// Play starts the sink, logging failures.
func (b *Bridge) Play() {
	if err := b.sink.Play(); err != nil {
		b.log.Warn().Err(err).Str("src", b.sink.Source()).Msg("starting playback")
		b.publishError("play", b.sink.Source(), err)
	}
}

func (b *Bridge) handleEnded(gen uint64) {
	b.mu.Lock()
	nav := b.nav
	stale := gen != b.gen
	b.mu.Unlock()
	if stale || !b.sink.Autoplay() {
		return
	}

	b.sink.Load()
	if nav != nil && !nav.Next() {
		b.log.Debug().Msg("reached the end of the episode list")
	}
}

func (b *Bridge) handleRateChange(gen uint64, rate float64) {
	b.mu.Lock()
	if gen != b.gen || b.feed == "" || rate == b.rate {
		b.mu.Unlock()
		return
	}
	b.rate = rate
	address := b.feed
	b.mu.Unlock()

	if b.rates != nil {
		if err := b.rates.SavePlaybackRate(address, rate); err != nil {
			b.log.Error().Err(err).Str("feed", address).Float64("rate", rate).Msg("saving playback rate")
			b.publishError("save rate", address, err)
			return
		}
	}
	b.broadcast(func(s *Subscription) { s.sendRate(RateChange{Feed: address, Rate: rate}) })
}

func (b *Bridge) handleError(gen uint64, err error) {
	b.mu.Lock()
	stale := gen != b.gen
	b.mu.Unlock()
	if stale {
		return
	}
	src := b.sink.Source()
	b.log.Warn().Err(err).Str("src", src).Msg("playback failed")
	b.publishError("play", src, err)
}

func (b *Bridge) publishError(op, source string, err error) {
	e := ErrorEvent{Operation: op, Source: source, Err: err}
	b.broadcast(func(s *Subscription) { s.sendError(e) })
}

// Subscribe returns a new event subscription.
func (b *Bridge) Subscribe() *Subscription {
	sub := newSubscription()
	b.subsMu.Lock()
	b.subs = append(b.subs, sub)
	b.subsMu.Unlock()
	return sub
}

// Close ends all subscriptions.
func (b *Bridge) Close() {
	b.subsMu.Lock()
	subs := b.subs
	b.subs = nil
	b.subsMu.Unlock()
	for _, s := range subs {
		s.close()
	}
}

func (b *Bridge) broadcast(fn func(*Subscription)) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	for _, s := range b.subs {
		fn(s)
	}
}
