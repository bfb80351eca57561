package state

import (
	"database/sql"
	"time"

	"github.com/llehouerou/wavecast/internal/db"
	"github.com/llehouerou/wavecast/internal/feed"
)

// AddKnown appends address to the known feeds. A known address keeps its
// position and only has its title refreshed.
func (m *Manager) AddKnown(address, title string) error {
	return db.WithTx(m.db, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRow(`SELECT COALESCE(MAX(position), 0) + 1 FROM known_feeds`).Scan(&next); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO known_feeds (address, title, position, added_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(address) DO UPDATE SET
				title = CASE WHEN excluded.title = '' THEN known_feeds.title ELSE excluded.title END
		`, address, title, next, time.Now().Unix())
		return err
	})
}

// ListKnown returns the known feeds in insertion order.
func (m *Manager) ListKnown() ([]feed.Known, error) {
	rows, err := m.db.Query(`SELECT address, title FROM known_feeds ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var known []feed.Known
	for rows.Next() {
		var k feed.Known
		if err := rows.Scan(&k.Address, &k.Title); err != nil {
			return nil, err
		}
		known = append(known, k)
	}
	return known, rows.Err()
}

// RemoveKnown deletes address from the known feeds.
func (m *Manager) RemoveKnown(address string) error {
	_, err := m.db.Exec(`DELETE FROM known_feeds WHERE address = ?`, address)
	return err
}

var _ feed.Registry = (*Manager)(nil)
