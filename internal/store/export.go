package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Export outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// ExportRecord is one run of the jar export wizard.
type ExportRecord struct {
	ID          string
	ProjectURI  string
	MainClass   string
	Destination string
	Entries     int
	Outcome     string
	Message     string
	Created     time.Time
}

// SaveExport inserts rec, assigning an ID and timestamp when unset. No-op on
// a nil receiver.
func (h *History) SaveExport(ctx context.Context, rec ExportRecord) error {
	if h == nil {
		return nil
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO exports (id, project_uri, main_class, destination, entries, outcome, message, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ProjectURI, rec.MainClass, rec.Destination, rec.Entries, rec.Outcome, rec.Message, rec.Created.Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Str("id", rec.ID).Msg("store: failed to save export")
	}
	return err
}

// ListExports returns the most recent records first. limit <= 0 returns all.
func (h *History) ListExports(ctx context.Context, limit int) ([]ExportRecord, error) {
	if h == nil {
		return nil, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, project_uri, main_class, destination, entries, outcome, message, created
		 FROM exports ORDER BY created DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var rec ExportRecord
		var created int64
		if err := rows.Scan(&rec.ID, &rec.ProjectURI, &rec.MainClass, &rec.Destination,
			&rec.Entries, &rec.Outcome, &rec.Message, &created); err != nil {
			return nil, err
		}
		rec.Created = time.Unix(created, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LastExport returns the latest successful export of a project.
func (h *History) LastExport(ctx context.Context, projectURI string) (ExportRecord, bool) {
	if h == nil {
		return ExportRecord{}, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	var rec ExportRecord
	var created int64
	err := h.db.QueryRowContext(ctx,
		`SELECT id, project_uri, main_class, destination, entries, outcome, message, created
		 FROM exports WHERE project_uri = ? AND outcome = ? ORDER BY created DESC, rowid DESC LIMIT 1`,
		projectURI, OutcomeSuccess,
	).Scan(&rec.ID, &rec.ProjectURI, &rec.MainClass, &rec.Destination, &rec.Entries, &rec.Outcome, &rec.Message, &created)
	if err != nil {
		return ExportRecord{}, false
	}
	rec.Created = time.Unix(created, 0)
	return rec, true
}
