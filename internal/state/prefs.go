package state

import (
	"database/sql"
	"errors"
)

// Prefs are the playback preferences carried across restarts.
type Prefs struct {
	Volume      float64
	Rate        float64
	Looping     bool
	LastTrackID string
}

func getPrefs(db *sql.DB) (*Prefs, error) {
	row := db.QueryRow(`
		SELECT volume, rate, looping, last_track_id
		FROM prefs WHERE id = 1
	`)

	var p Prefs
	var looping int
	err := row.Scan(&p.Volume, &p.Rate, &looping, &p.LastTrackID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved state is valid on first run
	}
	if err != nil {
		return nil, err
	}
	p.Looping = looping != 0

	return &p, nil
}

func savePrefs(db *sql.DB, p Prefs) error {
	looping := 0
	if p.Looping {
		looping = 1
	}
	_, err := db.Exec(`
		INSERT INTO prefs (id, volume, rate, looping, last_track_id)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			rate = excluded.rate,
			looping = excluded.looping,
			last_track_id = excluded.last_track_id
	`, p.Volume, p.Rate, looping, p.LastTrackID)

	return err
}
