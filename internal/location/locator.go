package location

import (
	"sync"
)

// Locator is the externally visible address of the session.
type Locator interface {
	Read() (string, error)
	Replace(address string) error
}

// Memory is an in-memory Locator that records every replacement.
type Memory struct {
	mu      sync.Mutex
	address string
	history []string
}

// NewMemory creates a Memory locator holding address.
func NewMemory(address string) *Memory {
	return &Memory{address: address}
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.address, nil
}

func (m *Memory) Replace(address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.address = address
	m.history = append(m.history, address)
	return nil
}

// History returns the addresses written by Replace, oldest first.
func (m *Memory) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.history))
	copy(out, m.history)
	return out
}

// Store persists the last address.
type Store interface {
	GetLocation() (string, error)
	SaveLocation(address string) error
}

// Persistent is a Locator backed by a Store, so a restart reopens the last
// session.
type Persistent struct {
	store Store
}

// NewPersistent creates a Persistent locator.
func NewPersistent(store Store) *Persistent {
	return &Persistent{store: store}
}

func (p *Persistent) Read() (string, error) {
	return p.store.GetLocation()
}

func (p *Persistent) Replace(address string) error {
	return p.store.SaveLocation(address)
}

// Publisher writes addresses to a Locator, skipping writes that would not
// change the visible address.
type Publisher struct {
	locator Locator
	base    string
	last    string
}

// NewPublisher creates a Publisher. current is the address already visible.
func NewPublisher(locator Locator, base, current string) *Publisher {
	return &Publisher{locator: locator, base: base, last: current}
}

// Base returns the permalink base.
func (p *Publisher) Base() string {
	return p.base
}

// Publish encodes s and replaces the visible address if it changed.
// It reports whether a write happened.
func (p *Publisher) Publish(s Session) (bool, error) {
	return p.replace(Encode(p.base, s))
}

// PublishImport replaces the visible address with an import link.
func (p *Publisher) PublishImport(addresses []string) (bool, error) {
	return p.replace(ImportLink(p.base, addresses))
}

func (p *Publisher) replace(address string) (bool, error) {
	if address == p.last {
		return false, nil
	}
	if err := p.locator.Replace(address); err != nil {
		return false, err
	}
	p.last = address
	return true, nil
}

var (
	_ Locator = (*Memory)(nil)
	_ Locator = (*Persistent)(nil)
)
