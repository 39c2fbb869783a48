// Package repository handles poll-history database operations.
package repository

import (
	"database/sql"
	"time"

	"github.com/p7g/wealthsimple-prometheus/internal/database"
)

// PollHistory is one recorded poll cycle.
type PollHistory struct {
	ID             int64
	Status         string
	AccountsPolled int
	ErrorMessage   string
	StartedAt      time.Time
	CompletedAt    *time.Time
	DurationMs     *int64
}

// PollHistoryRepository handles poll history database operations.
type PollHistoryRepository struct {
	db *database.DB
}

// NewPollHistoryRepository creates a new PollHistoryRepository.
func NewPollHistoryRepository(db *database.DB) *PollHistoryRepository {
	return &PollHistoryRepository{db: db}
}

// Start creates a new poll history entry with status "started" and returns its ID.
func (r *PollHistoryRepository) Start() (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO poll_history (status, started_at)
		VALUES ('started', ?)
	`, time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Complete marks a poll cycle as successful.
func (r *PollHistoryRepository) Complete(id int64, accountsPolled int) error {
	now := time.Now()
	_, err := r.db.Exec(`
		UPDATE poll_history
		SET status = 'success', accounts_polled = ?, completed_at = ?,
		    duration_ms = (julianday(?) - julianday(started_at)) * 86400000
		WHERE id = ?
	`, accountsPolled, now, now, id)
	return err
}

// Fail marks a poll cycle as failed with an error message.
func (r *PollHistoryRepository) Fail(id int64, errorMsg string) error {
	now := time.Now()
	_, err := r.db.Exec(`
		UPDATE poll_history
		SET status = 'error', error_message = ?, completed_at = ?,
		    duration_ms = (julianday(?) - julianday(started_at)) * 86400000
		WHERE id = ?
	`, errorMsg, now, now, id)
	return err
}

// GetByID retrieves a poll history entry by ID.
func (r *PollHistoryRepository) GetByID(id int64) (*PollHistory, error) {
	row := r.db.QueryRow(`
		SELECT id, status, accounts_polled, error_message, started_at, completed_at, duration_ms
		FROM poll_history
		WHERE id = ?
	`, id)
	return scanPollHistory(row)
}

// Recent returns the most recent poll history entries, newest first.
func (r *PollHistoryRepository) Recent(limit int) ([]*PollHistory, error) {
	rows, err := r.db.Query(`
		SELECT id, status, accounts_polled, error_message, started_at, completed_at, duration_ms
		FROM poll_history
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*PollHistory
	for rows.Next() {
		entry, err := scanPollHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPollHistory(row rowScanner) (*PollHistory, error) {
	var entry PollHistory
	var errorMsg sql.NullString
	var completedAt sql.NullTime
	var durationMs sql.NullInt64

	err := row.Scan(&entry.ID, &entry.Status, &entry.AccountsPolled, &errorMsg,
		&entry.StartedAt, &completedAt, &durationMs)
	if err != nil {
		return nil, err
	}

	if errorMsg.Valid {
		entry.ErrorMessage = errorMsg.String
	}
	if completedAt.Valid {
		entry.CompletedAt = &completedAt.Time
	}
	if durationMs.Valid {
		entry.DurationMs = &durationMs.Int64
	}
	return &entry, nil
}
