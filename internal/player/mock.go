// internal/player/mock.go
package player

import (
	"sync"
	"time"
)

// Mock is a test double for Player. Play succeeds synchronously unless an
// error is set.
type Mock struct {
	mu        sync.Mutex
	src       string
	state     State
	position  time.Duration
	duration  time.Duration
	rate      float64
	autoplay  bool
	playErr   error
	playCalls []string
	srcCalls  []string
	seekCalls []time.Duration
	loads     int

	onEnded func()
	onRate  func(float64)
	onError func(error)
}

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{state: Stopped, rate: 1}
}

func (m *Mock) SetSource(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.srcCalls = append(m.srcCalls, url)
	if url == m.src {
		return
	}
	m.src = url
	m.state = Stopped
	m.position = 0
}

func (m *Mock) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls = append(m.playCalls, m.src)
	if m.playErr != nil {
		return m.playErr
	}
	if m.src == "" {
		return ErrNoSource
	}
	m.state = Playing
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.CanPause() {
		m.state = Paused
	}
}

func (m *Mock) Load() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	m.state = Stopped
	m.position = 0
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, d)
	m.position = d
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *Mock) SetRate(rate float64) {
	m.mu.Lock()
	m.rate = ClampRate(rate)
	rate = m.rate
	fn := m.onRate
	m.mu.Unlock()

	if fn != nil {
		fn(rate)
	}
}

func (m *Mock) Autoplay() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.autoplay
}

func (m *Mock) SetAutoplay(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoplay = on
}

func (m *Mock) OnEnded(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnded = fn
}

func (m *Mock) OnRateChange(fn func(float64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRate = fn
}

func (m *Mock) OnError(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

// Test helpers

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) PlayCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.playCalls...)
}

func (m *Mock) SourceCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.srcCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) LoadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

// HasHandlers reports whether any event handler is registered.
func (m *Mock) HasHandlers() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onEnded != nil || m.onRate != nil || m.onError != nil
}

// SimulateEnded simulates the source playing to its end.
func (m *Mock) SimulateEnded() {
	m.mu.Lock()
	m.state = Stopped
	fn := m.onEnded
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// SimulateError simulates an asynchronous playback failure.
func (m *Mock) SimulateError(err error) {
	m.mu.Lock()
	m.state = Stopped
	fn := m.onError
	m.mu.Unlock()

	if fn != nil {
		fn(err)
	}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
