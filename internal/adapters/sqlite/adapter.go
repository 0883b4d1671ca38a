// Package sqlite provides a SQLite-backed implementation of the track repository port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/resonance/internal/core/domain"
	"github.com/ewilliams-labs/resonance/internal/logging"
)

// Adapter implements ports.TrackRepository for SQLite
type Adapter struct {
	db *sql.DB
}

// Import describes one SaveCatalog run.
type Import struct {
	ID         string
	Source     string
	TrackCount int
	CreatedAt  time.Time
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: open db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite adapter: ping db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite adapter: migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// SaveCatalog replaces the stored catalog with tracks, in order, and records
// the import run. Later duplicates of an id are ignored.
func (a *Adapter) SaveCatalog(ctx context.Context, source string, tracks []domain.Track) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite adapter: begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM track_features"); err != nil {
		return fmt.Errorf("sqlite adapter: clear features: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tracks"); err != nil {
		return fmt.Errorf("sqlite adapter: clear tracks: %w", err)
	}

	importID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO imports (id, source, track_count, created_at) VALUES (?, ?, ?, ?)",
		importID, source, len(tracks), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("sqlite adapter: record import: %w", err)
	}

	stmtTrack, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (id, position, name, artist, album, release_date, import_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("sqlite adapter: prepare track insert: %w", err)
	}
	defer stmtTrack.Close()

	stmtFeature, err := tx.PrepareContext(ctx, `
		INSERT INTO track_features (track_id, name, value)
		VALUES (?, ?, ?)
		ON CONFLICT(track_id, name) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("sqlite adapter: prepare feature insert: %w", err)
	}
	defer stmtFeature.Close()

	saved := 0
	for i, t := range tracks {
		res, err := stmtTrack.ExecContext(ctx, t.ID, i, t.Name, t.Artist, t.Album, t.ReleaseDate, importID)
		if err != nil {
			return fmt.Errorf("sqlite adapter: save track %s: %w", t.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		saved++
		for name, value := range t.Features {
			if _, err := stmtFeature.ExecContext(ctx, t.ID, name, value); err != nil {
				return fmt.Errorf("sqlite adapter: save feature %s of %s: %w", name, t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite adapter: commit: %w", err)
	}

	logging.Info().
		Str("import_id", importID).
		Str("source", source).
		Int("tracks", saved).
		Int("duplicates", len(tracks)-saved).
		Msg("catalog saved")
	return nil
}

// LoadDataset returns the stored catalog in insertion order with only the
// rows carrying every requested feature (domain.DefaultFeatures when empty).
func (a *Adapter) LoadDataset(ctx context.Context, features []string) (domain.Dataset, error) {
	features = domain.ResolveFeatures(features)

	tracks, err := a.loadTracks(ctx)
	if err != nil {
		return domain.Dataset{}, err
	}
	if len(tracks) == 0 {
		return domain.NewDataset(features, nil), nil
	}

	columns, err := a.featureNames(ctx)
	if err != nil {
		return domain.Dataset{}, err
	}
	ds := domain.NewDataset(columns, nil)
	if missing := ds.MissingColumns(features); len(missing) > 0 {
		return domain.Dataset{}, &domain.SchemaError{Missing: missing}
	}

	kept, dropped := domain.DropIncomplete(tracks, features)
	if dropped > 0 {
		logging.Warn().
			Int("dropped", dropped).
			Int("kept", len(kept)).
			Msg("dropped rows with missing values")
	}
	ds.Tracks = kept
	return ds, nil
}

// LastImport returns the most recent import run.
func (a *Adapter) LastImport(ctx context.Context) (Import, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, source, track_count, created_at
		FROM imports
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`)
	var imp Import
	if err := row.Scan(&imp.ID, &imp.Source, &imp.TrackCount, &imp.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Import{}, domain.ErrNotFound
		}
		return Import{}, fmt.Errorf("sqlite adapter: load import: %w", err)
	}
	return imp, nil
}

func (a *Adapter) loadTracks(ctx context.Context) ([]domain.Track, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, name, artist, IFNULL(album, ''), IFNULL(release_date, '')
		FROM tracks
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: load tracks: %w", err)
	}
	defer rows.Close()

	var tracks []domain.Track
	byID := make(map[string]int)
	for rows.Next() {
		var t domain.Track
		if err := rows.Scan(&t.ID, &t.Name, &t.Artist, &t.Album, &t.ReleaseDate); err != nil {
			return nil, fmt.Errorf("sqlite adapter: scan track: %w", err)
		}
		byID[t.ID] = len(tracks)
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite adapter: iterate tracks: %w", err)
	}

	featureRows, err := a.db.QueryContext(ctx, "SELECT track_id, name, value FROM track_features")
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: load features: %w", err)
	}
	defer featureRows.Close()

	for featureRows.Next() {
		var (
			trackID string
			name    string
			value   sql.NullFloat64
		)
		if err := featureRows.Scan(&trackID, &name, &value); err != nil {
			return nil, fmt.Errorf("sqlite adapter: scan feature: %w", err)
		}
		i, ok := byID[trackID]
		if !ok || !value.Valid {
			continue
		}
		tracks[i].SetFeature(name, value.Float64)
	}
	if err := featureRows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite adapter: iterate features: %w", err)
	}

	return tracks, nil
}

// featureNames lists the distinct feature names in first-stored order.
func (a *Adapter) featureNames(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT name FROM track_features
		GROUP BY name
		ORDER BY MIN(rowid)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite adapter: load feature names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite adapter: scan feature name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (a *Adapter) migrate() error {
	query := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		track_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tracks (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT,
		release_date TEXT,
		import_id TEXT REFERENCES imports(id)
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_position ON tracks(position);

	CREATE TABLE IF NOT EXISTS track_features (
		track_id TEXT NOT NULL,
		name TEXT NOT NULL,
		value REAL,
		PRIMARY KEY (track_id, name),
		FOREIGN KEY(track_id) REFERENCES tracks(id) ON DELETE CASCADE
	);
	`
	_, err := a.db.Exec(query)
	return err
}
