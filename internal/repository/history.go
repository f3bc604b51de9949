package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vsplit/vsplit/internal/common"
	"github.com/vsplit/vsplit/internal/entity"
)

// HistoryRepository keeps the settled-bill ledger: one row per session in
// which every member finished paying.
type HistoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewHistoryRepository(store *Store, logger *slog.Logger) *HistoryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryRepository{db: store.DB, logger: logger, now: time.Now}
}

// Record appends a settled bill. Recording the same session twice is a
// no-op, so re-toggling the last payment does not duplicate the entry.
func (r *HistoryRepository) Record(ctx context.Context, rec *entity.HistoryRecord) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM history WHERE session_id = $1`, rec.SessionID).Scan(&exists)
	if err != nil {
		return common.WrapError(err, "check history")
	}
	if exists > 0 {
		return nil
	}

	rec.ID = uuid.NewString()
	rec.RecordedAt = r.now().UTC()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO history (id, session_id, group_name, bill_date, total, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.SessionID, rec.GroupName, rec.Date, rec.Total, rec.RecordedAt)
	if err != nil {
		return common.WrapError(err, "record history")
	}
	r.logger.Info("history.recorded", "session_id", rec.SessionID, "total", rec.Total)
	return nil
}

// maxHistoryLimit bounds one history page regardless of what the caller asks
// for.
const maxHistoryLimit = 200

// List returns settled bills, most recent first.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]entity.HistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, group_name, bill_date, total, recorded_at
		 FROM history ORDER BY recorded_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, common.WrapError(err, "list history")
	}
	defer rows.Close()

	var recs []entity.HistoryRecord
	for rows.Next() {
		var rec entity.HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.GroupName, &rec.Date, &rec.Total, &rec.RecordedAt); err != nil {
			return nil, common.WrapError(err, "scan history row")
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
