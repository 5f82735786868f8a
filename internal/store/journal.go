package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"sahamwatch/internal/errors"
	"sahamwatch/internal/models"
)

// FiredAlert is one journal row: an alert that triggered and was notified.
type FiredAlert struct {
	ID          string
	UserID      string
	Symbol      string
	Direction   models.AlertDirection
	TargetPrice float64
	LastPrice   float64
	FiredAt     time.Time
}

// Journal records triggered alerts in SQLite. It is supplementary: journal
// failures are logged by the caller and never block alert removal, and the
// durable user document stays in the flat JSON store.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (and if needed initializes) the journal database.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "opening journal database")
	}

	schema := `
	CREATE TABLE IF NOT EXISTS fired_alerts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		target_price REAL NOT NULL,
		last_price REAL NOT NULL,
		fired_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fired_alerts_user ON fired_alerts(user_id, fired_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating journal schema")
	}

	return &Journal{db: db}, nil
}

// Record appends one fired alert to the journal.
func (j *Journal) Record(ctx context.Context, userID string, alert models.Alert, lastPrice float64) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO fired_alerts (id, user_id, symbol, direction, target_price, last_price, fired_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), userID, alert.Symbol, string(alert.Direction),
		alert.TargetPrice, lastPrice, time.Now().UTC(),
	)
	return errors.Wrap(err, "recording fired alert")
}

// History returns fired alerts, newest first. An empty userID returns all users.
func (j *Journal) History(ctx context.Context, userID string, limit int) ([]FiredAlert, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, user_id, symbol, direction, target_price, last_price, fired_at
	          FROM fired_alerts`
	args := []interface{}{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY fired_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying journal")
	}
	defer rows.Close()

	var fired []FiredAlert
	for rows.Next() {
		var f FiredAlert
		var direction string
		if err := rows.Scan(&f.ID, &f.UserID, &f.Symbol, &direction, &f.TargetPrice, &f.LastPrice, &f.FiredAt); err != nil {
			return nil, errors.Wrap(err, "scanning journal row")
		}
		f.Direction = models.AlertDirection(direction)
		fired = append(fired, f)
	}
	return fired, rows.Err()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
