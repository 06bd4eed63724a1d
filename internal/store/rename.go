package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNothingToUndo is returned by UndoRename when the journal is empty.
var ErrNothingToUndo = errors.New("store: no rename to undo")

// RenameRecord is one applied rename. OldContent holds the file body from
// before a declaration rewrite, nil when only the path changed.
type RenameRecord struct {
	ID         int64
	OldPath    string
	NewPath    string
	OldContent []byte
	Created    time.Time
}

// RecordRename appends rec to the rename journal. No-op on a nil receiver.
func (h *History) RecordRename(ctx context.Context, rec RenameRecord) error {
	if h == nil {
		return nil
	}
	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO renames (old_path, new_path, old_content, created) VALUES (?, ?, ?, ?)`,
		rec.OldPath, rec.NewPath, rec.OldContent, rec.Created.Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Str("file", rec.OldPath).Msg("store: failed to record rename")
	}
	return err
}

// UndoRename reverses the latest journaled rename: the file moves back to its
// old path and the old content is restored when one was recorded. The record
// is removed once the file is back.
func (h *History) UndoRename(ctx context.Context) (RenameRecord, error) {
	if h == nil {
		return RenameRecord{}, ErrNothingToUndo
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	var rec RenameRecord
	var created int64
	err := h.db.QueryRowContext(ctx,
		`SELECT id, old_path, new_path, old_content, created FROM renames ORDER BY id DESC LIMIT 1`,
	).Scan(&rec.ID, &rec.OldPath, &rec.NewPath, &rec.OldContent, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return RenameRecord{}, ErrNothingToUndo
	}
	if err != nil {
		return RenameRecord{}, err
	}
	rec.Created = time.Unix(created, 0)

	if _, err := os.Stat(rec.OldPath); err == nil {
		return rec, fmt.Errorf("undo rename: %s already exists", rec.OldPath)
	}
	if err := os.Rename(rec.NewPath, rec.OldPath); err != nil {
		return rec, fmt.Errorf("undo rename: %w", err)
	}
	if rec.OldContent != nil {
		if err := os.WriteFile(rec.OldPath, rec.OldContent, 0o644); err != nil {
			log.Warn().Err(err).Str("file", rec.OldPath).Msg("store: undo rename: failed to restore content")
		}
	}
	if _, err := h.db.ExecContext(ctx, `DELETE FROM renames WHERE id = ?`, rec.ID); err != nil {
		log.Warn().Err(err).Int64("id", rec.ID).Msg("store: failed to drop rename record")
	}
	return rec, nil
}
