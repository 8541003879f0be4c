package iodb

import (
	"context"
	"database/sql"
	"time"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/ledger"
	_ "modernc.org/sqlite"
)

type sqliteLedger struct {
	db *sql.DB
}

// OpenSQLite opens or creates a ledger file at path.
func OpenSQLite(ctx context.Context, path string) (ledger.Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, LedgerOpenError("sqlite", path, err)
	}
	// one writer
	db.SetMaxOpenConns(1)

	q := `CREATE TABLE IF NOT EXISTS ` + table + ` (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		row_index INTEGER NOT NULL,
		strategy TEXT NOT NULL,
		outcome TEXT NOT NULL,
		instance_uuid TEXT,
		instance_id INTEGER,
		message TEXT,
		created_at TEXT NOT NULL
	)`
	if _, err = db.ExecContext(ctx, q); err != nil {
		db.Close()
		return nil, LedgerOpenError("sqlite", path, err)
	}
	return &sqliteLedger{db: db}, nil
}

func (l *sqliteLedger) Record(ctx context.Context, e ledger.Entry) error {
	q := `INSERT OR REPLACE INTO ` + table + ` (
		id, run_id, row_index, strategy, outcome,
		instance_uuid, instance_id, message, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := l.db.ExecContext(ctx, q,
		e.ID, e.RunID, e.Row, e.Strategy, e.Outcome,
		e.InstanceUUID, e.InstanceID, e.Message,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return LedgerWriteError(e.RunID, e.Row, err)
	}
	return nil
}

func (l *sqliteLedger) Entries(
	ctx context.Context,
	runID string,
) ([]ledger.Entry, error) {
	q := `SELECT id, run_id, row_index, strategy, outcome,
		instance_uuid, instance_id, message, created_at
	FROM ` + table + ` WHERE run_id = ? ORDER BY row_index`
	rows, err := l.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, LedgerReadError(runID, err)
	}
	defer rows.Close()

	var res []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		var created string
		err = rows.Scan(
			&e.ID, &e.RunID, &e.Row, &e.Strategy, &e.Outcome,
			&e.InstanceUUID, &e.InstanceID, &e.Message, &created,
		)
		if err != nil {
			return nil, LedgerReadError(runID, err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		res = append(res, e)
	}
	if err = rows.Err(); err != nil {
		return nil, LedgerReadError(runID, err)
	}
	return res, nil
}

func (l *sqliteLedger) Close() error {
	return l.db.Close()
}
