// Package sqlitesink stores fanlog records in a SQLite database.
//
// Each record becomes one row in log_records. Data and Context are kept as
// JSON text so they can be queried with SQLite's json functions.
package sqlitesink

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"fanlog/pkg/fanlog"
)

// DefaultID names the transport when Options.ID is empty.
const DefaultID = "sqlite"

// Options configures the SQLite transport.
type Options struct {
	ID   string
	Path string
}

// Transport inserts one row per record.
type Transport struct {
	id   string
	path string
	db   *sql.DB
}

// Open creates or connects to the database at opts.Path.
func Open(opts Options) (*Transport, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, errors.New("sqlitesink: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "ensure database dir for %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, errors.Wrapf(execErr, "apply pragma %q", pragma)
		}
	}

	id := strings.TrimSpace(opts.ID)
	if id == "" {
		id = DefaultID
	}
	t := &Transport{id: id, path: path, db: db}
	if err := t.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return t, nil
}

func (t *Transport) ID() string { return t.id }

// Path returns the database file.
func (t *Transport) Path() string { return t.path }

func (t *Transport) Write(rec fanlog.Record) error {
	data, err := json.Marshal(fieldsOrEmpty(rec.Data))
	if err != nil {
		return errors.Wrap(err, "encode data")
	}
	ctxJSON, err := json.Marshal(fieldsOrEmpty(rec.Context))
	if err != nil {
		return errors.Wrap(err, "encode context")
	}

	_, err = t.db.ExecContext(
		context.Background(),
		`INSERT INTO log_records (app, level, message, data_json, context_json, timestamp)
         VALUES (?, ?, ?, ?, ?, ?)`,
		nullableString(rec.App),
		int(rec.Level),
		rec.Message,
		string(data),
		string(ctxJSON),
		rec.Timestamp,
	)
	return errors.Wrap(err, "insert record")
}

// Recent returns up to limit records, newest first.
func (t *Transport) Recent(ctx context.Context, limit int) ([]fanlog.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := t.db.QueryContext(ctx,
		`SELECT app, level, message, data_json, context_json, timestamp
         FROM log_records ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query records")
	}
	defer rows.Close()

	var records []fanlog.Record
	for rows.Next() {
		var (
			app             sql.NullString
			level           int
			rec             fanlog.Record
			dataRaw, ctxRaw string
		)
		if err := rows.Scan(&app, &level, &rec.Message, &dataRaw, &ctxRaw, &rec.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scan record")
		}
		rec.App = app.String
		rec.Level = fanlog.Severity(level)
		if err := json.Unmarshal([]byte(dataRaw), &rec.Data); err != nil {
			return nil, errors.Wrap(err, "decode data")
		}
		if err := json.Unmarshal([]byte(ctxRaw), &rec.Context); err != nil {
			return nil, errors.Wrap(err, "decode context")
		}
		records = append(records, rec)
	}
	return records, errors.Wrap(rows.Err(), "iterate records")
}

// Count returns the number of stored records at or above floor.
func (t *Transport) Count(ctx context.Context, floor fanlog.Severity) (int, error) {
	var n int
	err := t.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM log_records WHERE level >= ?", int(floor)).Scan(&n)
	return n, errors.Wrap(err, "count records")
}

// Close closes the underlying database connection.
func (t *Transport) Close() error {
	if t == nil || t.db == nil {
		return nil
	}
	return t.db.Close()
}

func fieldsOrEmpty(f fanlog.Fields) fanlog.Fields {
	if f == nil {
		return fanlog.Fields{}
	}
	return f
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
