package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"remotework.service/internal/core/model"
)

// Repository contract
type Repository interface {
	Get(ctx context.Context, id int64) (*model.RemoteWork, error)
	Save(ctx context.Context, entry *model.RemoteWork) error
	Remove(ctx context.Context, entry *model.RemoteWork) error
	BatchSave(ctx context.Context, entries []*model.RemoteWork) error
	BatchRemove(ctx context.Context, entries []*model.RemoteWork) error
	FindByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*model.RemoteWork, error)
	FindByUserAndYear(ctx context.Context, userID int64, year int) ([]*model.RemoteWork, error)
	FindByUserAndMonth(ctx context.Context, userID int64, year int, month time.Month) ([]*model.RemoteWork, error)
	FindApprovedByUserAndYear(ctx context.Context, userID int64, year int) ([]*model.RemoteWork, error)
	FindPendingForApproval(ctx context.Context, userID int64) ([]*model.RemoteWork, error)
}

// RemoteWorkRepository is the concrete implementation for a PostgreSQL
// database. User identity is owned externally; the table keeps the
// user id, username and display name snapshot that calendar identity
// and rendering need.
type RemoteWorkRepository struct {
	DB *sql.DB
}

// NewRemoteWorkRepository create new instance
func NewRemoteWorkRepository(db *sql.DB) Repository {
	return &RemoteWorkRepository{DB: db}
}

const selectColumns = `id, user_id, username, display_name, type, date, half_day, comment, status, created_by, created_at, approved_by, approved_at`

// Get fetches one remote work entry by its ID.
func (r *RemoteWorkRepository) Get(ctx context.Context, id int64) (*model.RemoteWork, error) {
	query := `SELECT ` + selectColumns + ` FROM remote_work WHERE id = $1`

	row := r.DB.QueryRowContext(ctx, query, id)
	return scanEntry(row)
}

// Save inserts a new entry or updates an existing one. On insert the
// generated ID is written back into the entry.
func (r *RemoteWorkRepository) Save(ctx context.Context, entry *model.RemoteWork) error {
	if entry.User == nil {
		return fmt.Errorf("remote work entry has no user")
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.user_id", entry.User.ID))

	if entry.ID == 0 {
		return r.insert(ctx, r.DB, entry)
	}
	return r.update(ctx, r.DB, entry)
}

// Remove deletes a single entry.
func (r *RemoteWorkRepository) Remove(ctx context.Context, entry *model.RemoteWork) error {
	query := `DELETE FROM remote_work WHERE id = $1`

	_, err := r.DB.ExecContext(ctx, query, entry.ID)
	return err
}

// BatchSave persists all entries inside a single transaction, so a batch
// approval either fully applies or not at all.
func (r *RemoteWorkRepository) BatchSave(ctx context.Context, entries []*model.RemoteWork) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch save: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		if entry.User == nil {
			return fmt.Errorf("remote work entry has no user")
		}
		if entry.ID == 0 {
			err = r.insert(ctx, tx, entry)
		} else {
			err = r.update(ctx, tx, entry)
		}
		if err != nil {
			return fmt.Errorf("failed to save entry in batch: %w", err)
		}
	}

	return tx.Commit()
}

// BatchRemove deletes all entries inside a single transaction.
func (r *RemoteWorkRepository) BatchRemove(ctx context.Context, entries []*model.RemoteWork) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch remove: %w", err)
	}
	defer tx.Rollback()

	query := `DELETE FROM remote_work WHERE id = $1`
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, query, entry.ID); err != nil {
			return fmt.Errorf("failed to remove entry in batch: %w", err)
		}
	}

	return tx.Commit()
}

// FindByUserAndDate returns all entries of a user on one calendar day.
func (r *RemoteWorkRepository) FindByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*model.RemoteWork, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.user_id", userID))

	query := `SELECT ` + selectColumns + `
              FROM remote_work
              WHERE user_id = $1 AND date = $2
              ORDER BY id`

	return r.queryEntries(ctx, query, userID, date.Format("2006-01-02"))
}

// FindByUserAndYear returns all entries of a user within one year, newest first.
func (r *RemoteWorkRepository) FindByUserAndYear(ctx context.Context, userID int64, year int) ([]*model.RemoteWork, error) {
	query := `SELECT ` + selectColumns + `
              FROM remote_work
              WHERE user_id = $1 AND date >= $2 AND date < $3
              ORDER BY date DESC`

	start := fmt.Sprintf("%d-01-01", year)
	end := fmt.Sprintf("%d-01-01", year+1)

	return r.queryEntries(ctx, query, userID, start, end)
}

// FindByUserAndMonth returns all entries of a user within one month, newest first.
func (r *RemoteWorkRepository) FindByUserAndMonth(ctx context.Context, userID int64, year int, month time.Month) ([]*model.RemoteWork, error) {
	query := `SELECT ` + selectColumns + `
              FROM remote_work
              WHERE user_id = $1 AND date >= $2 AND date < $3
              ORDER BY date DESC`

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	return r.queryEntries(ctx, query, userID, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// FindApprovedByUserAndYear returns the approved entries within one year,
// ascending by date, as needed for statistics and calendar export.
func (r *RemoteWorkRepository) FindApprovedByUserAndYear(ctx context.Context, userID int64, year int) ([]*model.RemoteWork, error) {
	query := `SELECT ` + selectColumns + `
              FROM remote_work
              WHERE user_id = $1 AND status = $2 AND date >= $3 AND date < $4
              ORDER BY date`

	start := fmt.Sprintf("%d-01-01", year)
	end := fmt.Sprintf("%d-01-01", year+1)

	return r.queryEntries(ctx, query, userID, model.StatusApproved, start, end)
}

// FindPendingForApproval returns the entries of a user still waiting for
// a decision, newest first.
func (r *RemoteWorkRepository) FindPendingForApproval(ctx context.Context, userID int64) ([]*model.RemoteWork, error) {
	query := `SELECT ` + selectColumns + `
              FROM remote_work
              WHERE user_id = $1 AND status = $2
              ORDER BY date DESC`

	return r.queryEntries(ctx, query, userID, model.StatusNew)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *RemoteWorkRepository) insert(ctx context.Context, db execer, entry *model.RemoteWork) error {
	query := `INSERT INTO remote_work (user_id, username, display_name, type, date, half_day, comment, status, created_by, created_at, approved_by, approved_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`

	var createdBy, approvedBy sql.NullInt64
	if entry.CreatedBy != nil {
		createdBy = sql.NullInt64{Int64: entry.CreatedBy.ID, Valid: true}
	}
	if entry.ApprovedBy != nil {
		approvedBy = sql.NullInt64{Int64: entry.ApprovedBy.ID, Valid: true}
	}

	var approvedAt sql.NullTime
	if entry.ApprovedAt != nil {
		approvedAt = sql.NullTime{Time: *entry.ApprovedAt, Valid: true}
	}

	return db.QueryRowContext(ctx, query,
		entry.User.ID, entry.User.Username, entry.User.DisplayName,
		entry.Type, entry.Date.Format("2006-01-02"), entry.HalfDay, entry.Comment, entry.Status,
		createdBy, entry.CreatedAt, approvedBy, approvedAt,
	).Scan(&entry.ID)
}

func (r *RemoteWorkRepository) update(ctx context.Context, db execer, entry *model.RemoteWork) error {
	query := `UPDATE remote_work
              SET type = $1, date = $2, half_day = $3, comment = $4, status = $5, approved_by = $6, approved_at = $7
              WHERE id = $8`

	var approvedBy sql.NullInt64
	if entry.ApprovedBy != nil {
		approvedBy = sql.NullInt64{Int64: entry.ApprovedBy.ID, Valid: true}
	}

	var approvedAt sql.NullTime
	if entry.ApprovedAt != nil {
		approvedAt = sql.NullTime{Time: *entry.ApprovedAt, Valid: true}
	}

	_, err := db.ExecContext(ctx, query,
		entry.Type, entry.Date.Format("2006-01-02"), entry.HalfDay, entry.Comment, entry.Status,
		approvedBy, approvedAt, entry.ID,
	)
	return err
}

func (r *RemoteWorkRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*model.RemoteWork, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*model.RemoteWork, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*model.RemoteWork, error) {
	entry := &model.RemoteWork{User: &model.User{}}

	var createdBy, approvedBy sql.NullInt64
	var approvedAt sql.NullTime

	err := row.Scan(
		&entry.ID, &entry.User.ID, &entry.User.Username, &entry.User.DisplayName,
		&entry.Type, &entry.Date, &entry.HalfDay, &entry.Comment, &entry.Status,
		&createdBy, &entry.CreatedAt, &approvedBy, &approvedAt,
	)
	if err != nil {
		return nil, err
	}

	if createdBy.Valid {
		entry.CreatedBy = &model.User{ID: createdBy.Int64}
	}
	if approvedBy.Valid {
		entry.ApprovedBy = &model.User{ID: approvedBy.Int64}
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		entry.ApprovedAt = &t
	}

	return entry, nil
}
