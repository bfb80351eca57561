//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/wavecast/internal/player"
)

// Adapter is a Surface exported over D-Bus as an MPRIS player.
type Adapter struct {
	server *server.Server
	player *playerAdapter
}

// New creates and starts an MPRIS adapter reporting the state of sink.
func New(sink player.Interface) (*Adapter, error) {
	pa := &playerAdapter{sink: sink}
	a := &Adapter{
		server: server.NewServer("wavecast", &rootAdapter{}, pa),
		player: pa,
	}

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// SetMetadata implements Surface.
func (a *Adapter) SetMetadata(m Metadata) {
	a.player.mu.Lock()
	defer a.player.mu.Unlock()
	a.player.meta = m
}

// SetActionHandlers implements Surface.
func (a *Adapter) SetActionHandlers(h Handlers) {
	a.player.mu.Lock()
	defer a.player.mu.Unlock()
	a.player.handlers = h
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	a.SetActionHandlers(Handlers{})
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Wavecast", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp3", "audio/flac", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter. Transport
// calls go through the registered handlers; state is read from the sink.
type playerAdapter struct {
	sink player.Interface

	mu       sync.Mutex
	meta     Metadata
	handlers Handlers
}

func (p *playerAdapter) current() (Metadata, Handlers) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.meta, p.handlers
}

func (p *playerAdapter) call(pick func(Handlers) func()) error {
	_, h := p.current()
	if fn := pick(h); fn != nil {
		fn()
	}
	return nil
}

func (p *playerAdapter) Next() error {
	return p.call(func(h Handlers) func() { return h.NextTrack })
}

func (p *playerAdapter) Previous() error {
	return p.call(func(h Handlers) func() { return h.PreviousTrack })
}

func (p *playerAdapter) Pause() error {
	return p.call(func(h Handlers) func() { return h.Pause })
}

func (p *playerAdapter) Play() error {
	return p.call(func(h Handlers) func() { return h.Play })
}

func (p *playerAdapter) PlayPause() error {
	if p.sink.State().CanPause() {
		return p.Pause()
	}
	return p.Play()
}

func (p *playerAdapter) Stop() error {
	return p.Pause()
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	_, h := p.current()
	if h.SeekTo != nil {
		h.SeekTo(max(p.sink.Position()+time.Duration(offset)*time.Microsecond, 0))
	}
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	_, h := p.current()
	if h.SeekTo != nil {
		h.SeekTo(time.Duration(position) * time.Microsecond)
	}
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.sink.State() {
	case player.Playing, player.Loading:
		return types.PlaybackStatusPlaying, nil
	case player.Paused:
		return types.PlaybackStatusPaused, nil
	case player.Stopped:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.sink.Rate(), nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	p.sink.SetRate(rate)
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	meta, _ := p.current()
	if meta.TrackID == "" {
		return types.Metadata{}, nil
	}

	length := meta.Length
	if d := p.sink.Duration(); d > 0 {
		length = d
	}

	return types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(meta.TrackID)),
		Length:  types.Microseconds(length.Microseconds()),
		Title:   meta.Title,
		Artist:  []string{meta.Artist},
		Album:   meta.Album,
		ArtUrl:  meta.ArtworkURL,
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.sink.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return player.MinRate, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return player.MaxRate, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	_, h := p.current()
	return h.NextTrack != nil, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	_, h := p.current()
	return h.PreviousTrack != nil, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	_, h := p.current()
	return h.Play != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	_, h := p.current()
	return h.Pause != nil, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	_, h := p.current()
	return h.SeekTo != nil, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// formatTrackID maps an episode id, which may hold any character, to a
// valid D-Bus object path.
func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}

var _ Surface = (*Adapter)(nil)
