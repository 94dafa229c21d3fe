package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/docsite/internal/docs"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, wrap(ErrDatabaseOpenFailed, err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, wrap(ErrInitializeSchemaFailed, err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		build_id TEXT NOT NULL,
		site_dir TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		hash TEXT NOT NULL,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_site ON runs(site_dir, started_at);
	CREATE TABLE IF NOT EXISTS doc_metadata (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		doc_id TEXT NOT NULL,
		source TEXT NOT NULL,
		title TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		last_updated_by TEXT,
		last_updated_at INTEGER,
		PRIMARY KEY (run_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record persists run and its documents in one transaction.
func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	if run == nil {
		return wrap(ErrRecordFailed, fmt.Errorf("run is nil"))
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Hash == "" {
		run.Hash = docs.ComputeDocsHash(run.Docs)
	}

	var metadataJSON []byte
	if run.Metadata != nil {
		var err error
		if metadataJSON, err = json.Marshal(run.Metadata); err != nil {
			return wrap(ErrRecordFailed, fmt.Errorf("marshal metadata: %w", err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(ErrRecordFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, build_id, site_dir, started_at, hash, metadata) VALUES (?, ?, ?, ?, ?, ?)",
		run.ID, run.BuildID, run.SiteDir, run.StartedAt.UnixNano(), run.Hash, metadataJSON,
	); err != nil {
		return wrap(ErrRecordFailed, fmt.Errorf("insert run: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO doc_metadata (run_id, position, doc_id, source, title, fingerprint, last_updated_by, last_updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return wrap(ErrRecordFailed, err)
	}
	defer func() { _ = stmt.Close() }()

	for i, d := range run.Docs {
		if _, err := stmt.ExecContext(ctx, run.ID, i, d.ID, d.Source, d.Title, d.Fingerprint,
			nullString(d.LastUpdatedBy), nullInt(d.LastUpdatedAt)); err != nil {
			return wrap(ErrRecordFailed, fmt.Errorf("insert doc %s: %w", d.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap(ErrRecordFailed, err)
	}
	return nil
}

// Latest returns the most recent run recorded for siteDir.
func (s *SQLiteStore) Latest(ctx context.Context, siteDir string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		run          Run
		startedAt    int64
		metadataJSON []byte
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, build_id, site_dir, started_at, hash, metadata FROM runs WHERE site_dir = ? ORDER BY started_at DESC LIMIT 1",
		siteDir,
	).Scan(&run.ID, &run.BuildID, &run.SiteDir, &startedAt, &run.Hash, &metadataJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, wrap(ErrQueryFailed, err)
	}
	run.StartedAt = time.Unix(0, startedAt)
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &run.Metadata); err != nil {
			return nil, wrap(ErrQueryFailed, fmt.Errorf("unmarshal metadata: %w", err))
		}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT doc_id, source, title, fingerprint, last_updated_by, last_updated_at FROM doc_metadata WHERE run_id = ? ORDER BY position",
		run.ID,
	)
	if err != nil {
		return nil, wrap(ErrQueryFailed, err)
	}
	defer func() { _ = rows.Close() }()

	run.Docs = []docs.Doc{}
	for rows.Next() {
		var (
			d  docs.Doc
			by sql.NullString
			at sql.NullInt64
		)
		if err := rows.Scan(&d.ID, &d.Source, &d.Title, &d.Fingerprint, &by, &at); err != nil {
			return nil, wrap(ErrQueryFailed, fmt.Errorf("scan doc: %w", err))
		}
		d.LastUpdatedBy = by.String
		d.LastUpdatedAt = at.Int64
		run.Docs = append(run.Docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(ErrQueryFailed, fmt.Errorf("iterate rows: %w", err))
	}
	return &run, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}
