package state

import (
	"database/sql"
	"time"

	"github.com/llehouerou/wavecast/internal/db"
)

// GetLocation returns the last saved session address, or "" on first run.
// A pending debounced save is returned before it reaches the database.
func (m *Manager) GetLocation() (string, error) {
	m.saveMu.Lock()
	if m.pending != nil {
		address := *m.pending
		m.saveMu.Unlock()
		return address, nil
	}
	m.saveMu.Unlock()

	var address string
	_, err := db.ScanOptional(m.db.QueryRow(`SELECT address FROM session_location WHERE id = 1`), &address)
	return address, err
}

// SaveLocation records the session address. Writes are debounced; Close
// flushes the last one.
func (m *Manager) SaveLocation(address string) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &address

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = saveLocation(m.db, *pending)
		}
	})
	return nil
}

func saveLocation(conn *sql.DB, address string) error {
	_, err := conn.Exec(`
		INSERT INTO session_location (id, address)
		VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET address = excluded.address
	`, address)
	return err
}
