package sqlitesink

import (
	"context"
	_ "embed"

	"github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape.
const schemaVersion = 1

// ErrSchemaMismatch means the database was created by an incompatible build.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (t *Transport) initSchema(ctx context.Context) error {
	var tableExists int
	err := t.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return errors.Wrap(err, "check schema_version table")
	}
	if tableExists == 0 {
		return t.createSchema(ctx)
	}

	var version int
	if err := t.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return errors.Wrap(err, "read schema version")
	}
	if version != schemaVersion {
		return errors.Wrapf(ErrSchemaMismatch, "database has version %d, expected %d", version, schemaVersion)
	}
	return nil
}

func (t *Transport) createSchema(ctx context.Context) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin schema tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "create schema")
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return errors.Wrap(err, "record schema version")
	}
	return errors.Wrap(tx.Commit(), "commit schema")
}
