// Package store keeps the jar export history and the rename journal in a
// SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS exports (
	id           TEXT PRIMARY KEY,
	project_uri  TEXT NOT NULL,
	main_class   TEXT NOT NULL,
	destination  TEXT NOT NULL,
	entries      INTEGER NOT NULL,
	outcome      TEXT NOT NULL,
	message      TEXT NOT NULL DEFAULT '',
	created      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created);
CREATE INDEX IF NOT EXISTS idx_exports_project ON exports(project_uri);

CREATE TABLE IF NOT EXISTS renames (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	old_path     TEXT NOT NULL,
	new_path     TEXT NOT NULL,
	old_content  BLOB,
	created      INTEGER NOT NULL
);
`

// History is a SQLite-backed log of jar exports.
type History struct {
	mu        sync.Mutex
	db        *sql.DB
	retention time.Duration
}

// Open creates or opens a history database at the given path. Records older
// than retention are purged on open; 0 keeps everything.
func Open(dbPath string, retention time.Duration) (*History, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	h := &History{db: db, retention: retention}
	h.purgeStale()
	return h, nil
}

// Close closes the database.
func (h *History) Close() error {
	if h == nil {
		return nil
	}
	return h.db.Close()
}

// purgeStale removes records older than the retention period.
func (h *History) purgeStale() {
	if h.retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-h.retention).Unix()
	for _, table := range []string{"exports", "renames"} {
		res, err := h.db.Exec("DELETE FROM "+table+" WHERE created <= ?", cutoff)
		if err != nil {
			log.Warn().Err(err).Str("table", table).Msg("store: failed to purge old records")
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			log.Info().Int64("deleted", n).Str("table", table).Msg("store: purged old records")
		}
	}
}
