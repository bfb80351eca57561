package state

import (
	"time"

	"github.com/llehouerou/wavecast/internal/db"
)

// DefaultPlaybackRate is returned for feeds without a stored preference.
const DefaultPlaybackRate = 1.0

// GetPlaybackRate returns the saved playback rate of a feed.
func (m *Manager) GetPlaybackRate(feedAddress string) (float64, error) {
	var rate float64
	row := m.db.QueryRow(`SELECT rate FROM playback_rates WHERE feed_address = ?`, feedAddress)
	found, err := db.ScanOptional(row, &rate)
	if err != nil || !found {
		return DefaultPlaybackRate, err
	}
	return rate, nil
}

// SavePlaybackRate persists the playback rate of a feed.
func (m *Manager) SavePlaybackRate(feedAddress string, rate float64) error {
	_, err := m.db.Exec(`
		INSERT INTO playback_rates (feed_address, rate, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(feed_address) DO UPDATE SET
			rate = excluded.rate,
			updated_at = excluded.updated_at
	`, feedAddress, rate, time.Now().Unix())
	return err
}
