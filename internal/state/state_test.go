package state

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory SQLite database with the schema initialized.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		t.Fatalf("failed to init schema: %v", err)
	}

	return db
}

func TestGetPrefs_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	prefs, err := getPrefs(db)
	if err != nil {
		t.Fatalf("getPrefs failed: %v", err)
	}
	if prefs != nil {
		t.Errorf("expected nil prefs on empty db, got %+v", prefs)
	}
}

func TestSaveAndGetPrefs(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p := Prefs{
		Volume:      0.7,
		Rate:        1.25,
		Looping:     true,
		LastTrackID: "track-42",
	}
	if err := savePrefs(db, p); err != nil {
		t.Fatalf("savePrefs failed: %v", err)
	}

	retrieved, err := getPrefs(db)
	if err != nil {
		t.Fatalf("getPrefs failed: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected non-nil prefs")
	}

	if retrieved.Volume != p.Volume {
		t.Errorf("Volume = %v, want %v", retrieved.Volume, p.Volume)
	}
	if retrieved.Rate != p.Rate {
		t.Errorf("Rate = %v, want %v", retrieved.Rate, p.Rate)
	}
	if retrieved.Looping != p.Looping {
		t.Errorf("Looping = %v, want %v", retrieved.Looping, p.Looping)
	}
	if retrieved.LastTrackID != p.LastTrackID {
		t.Errorf("LastTrackID = %q, want %q", retrieved.LastTrackID, p.LastTrackID)
	}
}

func TestSavePrefs_Update(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := savePrefs(db, Prefs{Volume: 1, Rate: 1}); err != nil {
		t.Fatalf("savePrefs failed: %v", err)
	}
	if err := savePrefs(db, Prefs{Volume: 0.3, Rate: 2, Looping: true, LastTrackID: "t1"}); err != nil {
		t.Fatalf("savePrefs (update) failed: %v", err)
	}

	retrieved, _ := getPrefs(db)
	if retrieved.Volume != 0.3 {
		t.Errorf("Volume = %v, want 0.3", retrieved.Volume)
	}
	if !retrieved.Looping {
		t.Error("expected updated Looping = true")
	}
	if retrieved.LastTrackID != "t1" {
		t.Errorf("LastTrackID = %q, want t1", retrieved.LastTrackID)
	}
}

func TestManager_SavePrefs_Debounced(t *testing.T) {
	db := setupTestDB(t)

	m := &Manager{db: db}

	// Rapid saves coalesce into one write with the last value
	m.SavePrefs(Prefs{Volume: 0.1, Rate: 1})
	m.SavePrefs(Prefs{Volume: 0.5, Rate: 1})
	m.SavePrefs(Prefs{Volume: 0.9, Rate: 1})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		prefs, err := m.Prefs()
		if err != nil {
			t.Fatalf("Prefs failed: %v", err)
		}
		if prefs != nil {
			if prefs.Volume != 0.9 {
				t.Errorf("Volume = %v, want last value 0.9", prefs.Volume)
			}
			_ = m.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("debounced save never flushed")
}

func TestManager_Close_FlushesPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := initSchema(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	m := &Manager{db: db}
	m.SavePrefs(Prefs{Volume: 0.42, Rate: 1, LastTrackID: "final"})

	// Close before the debounce timer fires
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db2, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db2.Close()

	prefs, err := getPrefs(db2)
	if err != nil {
		t.Fatalf("getPrefs failed: %v", err)
	}
	if prefs == nil {
		t.Fatal("expected pending prefs to be flushed on Close")
	}
	if prefs.LastTrackID != "final" {
		t.Errorf("LastTrackID = %q, want final", prefs.LastTrackID)
	}
	if prefs.Volume != 0.42 {
		t.Errorf("Volume = %v, want 0.42", prefs.Volume)
	}
}
