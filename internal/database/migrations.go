package database

// migrationPollHistory records the outcome of every poll cycle.
const migrationPollHistory = `
CREATE TABLE IF NOT EXISTS poll_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	status TEXT NOT NULL DEFAULT 'started',
	accounts_polled INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	started_at TIMESTAMP NOT NULL,
	completed_at TIMESTAMP,
	duration_ms INTEGER
)`

const migrationPollHistoryIndexes = `
CREATE INDEX IF NOT EXISTS idx_poll_history_started_at ON poll_history(started_at)`
