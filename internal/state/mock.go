// internal/state/mock.go
package state

import (
	"sync"

	"github.com/llehouerou/wavecast/internal/feed"
)

// Mock is a test double for Manager.
type Mock struct {
	mu       sync.Mutex
	known    []feed.Known
	rates    map[string]float64
	location string
	closed   bool
	rateErr  error
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{rates: make(map[string]float64)}
}

func (m *Mock) AddKnown(address, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, k := range m.known {
		if k.Address == address {
			if title != "" {
				m.known[i].Title = title
			}
			return nil
		}
	}
	m.known = append(m.known, feed.Known{Address: address, Title: title})
	return nil
}

func (m *Mock) ListKnown() ([]feed.Known, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]feed.Known, len(m.known))
	copy(out, m.known)
	return out, nil
}

func (m *Mock) RemoveKnown(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, k := range m.known {
		if k.Address == address {
			m.known = append(m.known[:i], m.known[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Mock) GetPlaybackRate(feedAddress string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rates[feedAddress]; ok {
		return r, nil
	}
	return DefaultPlaybackRate, nil
}

func (m *Mock) SavePlaybackRate(feedAddress string, rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rateErr != nil {
		return m.rateErr
	}
	m.rates[feedAddress] = rate
	return nil
}

func (m *Mock) GetLocation() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.location, nil
}

func (m *Mock) SaveLocation(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.location = address
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetPlaybackRate(feedAddress string, rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates[feedAddress] = rate
}

func (m *Mock) SetRateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateErr = err
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
