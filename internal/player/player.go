package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog"
)

const resampleQuality = 4

var (
	speakerMu         sync.Mutex
	speakerRate       beep.SampleRate
	speakerReady      bool
	errSpeakerMissing = errors.New("audio output unavailable")
)

// initSpeaker initializes the shared speaker once, at the rate of the first
// track played.
func initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerReady {
		return speakerRate, nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return 0, fmt.Errorf("%w: %w", errSpeakerMissing, err)
	}
	speakerRate = rate
	speakerReady = true
	return rate, nil
}

// Player streams remote episodes through the system speaker. Sources are
// downloaded to a temporary file before decoding; mp3, flac and wav are
// supported. Changing the rate resamples, so pitch follows speed.
type Player struct {
	client *http.Client
	log    zerolog.Logger

	mu       sync.Mutex
	src      string
	state    State
	rate     float64
	autoplay bool
	gen      uint64
	cancel   context.CancelFunc
	track    *track

	onEnded func()
	onRate  func(float64)
	onError func(error)
}

type track struct {
	streamer  beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	baseRatio float64
}

// New creates a Player. A nil client uses http.DefaultClient.
func New(client *http.Client, logger zerolog.Logger) *Player {
	if client == nil {
		client = http.DefaultClient
	}
	return &Player{
		client: client,
		log:    logger.With().Str("component", "player").Logger(),
		state:  Stopped,
		rate:   1,
	}
}

func (p *Player) SetSource(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if url == p.src {
		return
	}
	p.src = url
	p.resetLocked()
}

func (p *Player) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src
}

func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.src == "" {
		return ErrNoSource
	}

	switch p.state {
	case Playing, Loading:
		return nil
	case Paused:
		if p.track == nil {
			// still downloading
			p.state = Loading
			return nil
		}
		speaker.Lock()
		p.track.ctrl.Paused = false
		speaker.Unlock()
		p.state = Playing
		return nil
	case Stopped:
	}

	p.gen++
	gen := p.gen
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.state = Loading

	go p.load(ctx, gen, p.src)
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.CanPause() {
		return
	}
	if p.track != nil {
		speaker.Lock()
		p.track.ctrl.Paused = true
		speaker.Unlock()
	}
	p.state = Paused
}

func (p *Player) Load() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

// Close stops playback and releases the current source.
func (p *Player) Close() {
	p.Load()
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.track == nil {
		return 0
	}
	speaker.Lock()
	pos := p.track.format.SampleRate.D(p.track.streamer.Position())
	speaker.Unlock()
	return pos
}

func (p *Player) SetPosition(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.track == nil {
		return
	}
	t := p.track
	n := min(max(t.format.SampleRate.N(d), 0), t.streamer.Len())
	speaker.Lock()
	err := t.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		p.log.Warn().Err(err).Dur("position", d).Msg("seek failed")
	}
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.track == nil {
		return 0
	}
	return p.track.format.SampleRate.D(p.track.streamer.Len())
}

func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

func (p *Player) SetRate(rate float64) {
	p.mu.Lock()
	p.rate = ClampRate(rate)
	rate = p.rate
	if p.track != nil {
		speaker.Lock()
		p.track.resampler.SetRatio(p.track.baseRatio * rate)
		speaker.Unlock()
	}
	fn := p.onRate
	p.mu.Unlock()

	if fn != nil {
		fn(rate)
	}
}

func (p *Player) Autoplay() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.autoplay
}

func (p *Player) SetAutoplay(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.autoplay = on
}

func (p *Player) OnEnded(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEnded = fn
}

func (p *Player) OnRateChange(fn func(float64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRate = fn
}

func (p *Player) OnError(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = fn
}

// resetLocked stops playback and drops the loaded track. p.mu must be held.
func (p *Player) resetLocked() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.track != nil {
		speaker.Clear()
		p.track.streamer.Close()
		p.track = nil
	}
	p.state = Stopped
}

func (p *Player) load(ctx context.Context, gen uint64, src string) {
	t, err := p.open(ctx, src)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		if t != nil {
			t.streamer.Close()
		}
		return
	}
	if err != nil {
		p.state = Stopped
		p.cancel = nil
		fn := p.onError
		p.mu.Unlock()
		p.log.Warn().Err(err).Str("src", src).Msg("playback failed")
		if fn != nil {
			fn(err)
		}
		return
	}

	t.resampler = beep.ResampleRatio(resampleQuality, t.baseRatio*p.rate, t.ctrl)
	t.ctrl.Paused = p.state == Paused
	if p.state == Loading {
		p.state = Playing
	}
	p.track = t
	p.cancel = nil
	speaker.Play(beep.Seq(t.resampler, beep.Callback(func() {
		// runs under the speaker lock
		go p.finish(gen)
	})))
	p.mu.Unlock()
}

func (p *Player) finish(gen uint64) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	if p.track != nil {
		p.track.streamer.Close()
		p.track = nil
	}
	p.state = Stopped
	fn := p.onEnded
	p.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// open downloads src and decodes it.
func (p *Player) open(ctx context.Context, src string) (*track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download %s: HTTP %d", src, resp.StatusCode)
	}

	kind, err := detectFormat(src, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "wavecast-*.audio")
	if err != nil {
		return nil, err
	}
	tmp := &tempFile{File: f}
	if _, err := io.Copy(f, resp.Body); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("download %s: %w", src, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, err
	}

	streamer, format, err := decode(kind, tmp)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}

	out, err := initSpeaker(format.SampleRate)
	if err != nil {
		streamer.Close()
		return nil, err
	}

	return &track{
		streamer:  streamer,
		format:    format,
		ctrl:      &beep.Ctrl{Streamer: streamer},
		baseRatio: float64(format.SampleRate) / float64(out),
	}, nil
}

// tempFile removes the download when closed.
type tempFile struct {
	*os.File
	once sync.Once
}

func (t *tempFile) Close() error {
	var err error
	t.once.Do(func() {
		err = t.File.Close()
		_ = os.Remove(t.Name())
	})
	return err
}
