package history

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_history (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	schedule_id       TEXT NOT NULL,
	schedule_name     TEXT NOT NULL,
	status            TEXT NOT NULL,
	manual            INTEGER NOT NULL DEFAULT 0,
	started_at        TIMESTAMP NOT NULL,
	finished_at       TIMESTAMP NOT NULL,
	exit_code         INTEGER NOT NULL DEFAULT 0,
	files_transferred INTEGER NOT NULL DEFAULT 0,
	bytes_transferred INTEGER NOT NULL DEFAULT 0,
	message           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_run_history_schedule ON run_history (schedule_id, started_at);
`

// Record is one finished or skipped run in the history log. Records
// outlive their schedule so operators can inspect runs of deleted jobs.
type Record struct {
	ID               int64           `db:"id" json:"id"`
	ScheduleID       string          `db:"schedule_id" json:"schedule_id"`
	ScheduleName     string          `db:"schedule_name" json:"schedule_name"`
	Status           model.RunStatus `db:"status" json:"status"`
	Manual           bool            `db:"manual" json:"manual"`
	StartedAt        time.Time       `db:"started_at" json:"started_at"`
	FinishedAt       time.Time       `db:"finished_at" json:"finished_at"`
	ExitCode         int             `db:"exit_code" json:"exit_code"`
	FilesTransferred int             `db:"files_transferred" json:"files_transferred"`
	BytesTransferred int64           `db:"bytes_transferred" json:"bytes_transferred"`
	Message          string          `db:"message" json:"message"`
}

// NewRecord builds a history record from a schedule and its run outcome.
func NewRecord(sched model.Schedule, outcome model.RunOutcome, manual bool) Record {
	return Record{
		ScheduleID:       sched.ID,
		ScheduleName:     sched.Name,
		Status:           outcome.Status,
		Manual:           manual,
		StartedAt:        outcome.StartedAt,
		FinishedAt:       outcome.FinishedAt,
		ExitCode:         outcome.ExitCode,
		FilesTransferred: outcome.FilesTransferred,
		BytesTransferred: outcome.BytesTransferred,
		Message:          outcome.Message,
	}
}

// Log is the run-history store, backed by an embedded SQLite database.
type Log struct {
	db *sqlx.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Log, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// sqlite allows a single writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Log{db: db}, nil
}

func (l *Log) Insert(rec Record) error {
	_, err := l.db.NamedExec(`
		INSERT INTO run_history (
			schedule_id, schedule_name, status, manual,
			started_at, finished_at, exit_code,
			files_transferred, bytes_transferred, message
		) VALUES (
			:schedule_id, :schedule_name, :status, :manual,
			:started_at, :finished_at, :exit_code,
			:files_transferred, :bytes_transferred, :message
		)`, rec)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// BySchedule returns up to limit records for one schedule, newest first.
func (l *Log) BySchedule(scheduleID string, limit int) ([]Record, error) {
	var out []Record
	err := l.db.Select(&out, `
		SELECT * FROM run_history
		WHERE schedule_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, scheduleID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query run history: %w", err)
	}
	return out, nil
}

// Recent returns up to limit records across all schedules, newest first.
func (l *Log) Recent(limit int) ([]Record, error) {
	var out []Record
	err := l.db.Select(&out, `
		SELECT * FROM run_history
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query run history: %w", err)
	}
	return out, nil
}

// Prune deletes records whose run started before cutoff and reports how
// many were removed.
func (l *Log) Prune(cutoff time.Time) (int64, error) {
	res, err := l.db.Exec(`DELETE FROM run_history WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune run history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (l *Log) Close() error {
	return l.db.Close()
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 500:
		return 500
	default:
		return limit
	}
}
