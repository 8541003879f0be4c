package iodb

import (
	"context"
	"fmt"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/ledger"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgLedger struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the PostgreSQL server of cfg and prepares the
// ledger table.
func OpenPostgres(
	ctx context.Context,
	cfg config.LedgerConfig,
) (ledger.Ledger, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)
	location := fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, LedgerOpenError("postgres", location, err)
	}
	// rows are recorded one by one
	poolConfig.MaxConns = 2
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, LedgerOpenError("postgres", location, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, LedgerOpenError("postgres", location, err)
	}

	q := `CREATE TABLE IF NOT EXISTS ` + table + ` (
		id UUID PRIMARY KEY,
		run_id TEXT NOT NULL,
		row_index INTEGER NOT NULL,
		strategy TEXT NOT NULL,
		outcome TEXT NOT NULL,
		instance_uuid TEXT,
		instance_id BIGINT,
		message TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err = pool.Exec(ctx, q); err != nil {
		pool.Close()
		return nil, LedgerOpenError("postgres", location, err)
	}
	return &pgLedger{pool: pool}, nil
}

func (l *pgLedger) Record(ctx context.Context, e ledger.Entry) error {
	q := `INSERT INTO ` + table + ` (
		id, run_id, row_index, strategy, outcome,
		instance_uuid, instance_id, message, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		outcome = EXCLUDED.outcome,
		instance_uuid = EXCLUDED.instance_uuid,
		instance_id = EXCLUDED.instance_id,
		message = EXCLUDED.message,
		created_at = EXCLUDED.created_at`
	_, err := l.pool.Exec(ctx, q,
		e.ID, e.RunID, e.Row, e.Strategy, e.Outcome,
		e.InstanceUUID, e.InstanceID, e.Message, e.CreatedAt,
	)
	if err != nil {
		return LedgerWriteError(e.RunID, e.Row, err)
	}
	return nil
}

func (l *pgLedger) Entries(
	ctx context.Context,
	runID string,
) ([]ledger.Entry, error) {
	q := `SELECT id::text, run_id, row_index, strategy, outcome,
		instance_uuid, instance_id, message, created_at
	FROM ` + table + ` WHERE run_id = $1 ORDER BY row_index`
	rows, err := l.pool.Query(ctx, q, runID)
	if err != nil {
		return nil, LedgerReadError(runID, err)
	}
	defer rows.Close()

	var res []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		err = rows.Scan(
			&e.ID, &e.RunID, &e.Row, &e.Strategy, &e.Outcome,
			&e.InstanceUUID, &e.InstanceID, &e.Message, &e.CreatedAt,
		)
		if err != nil {
			return nil, LedgerReadError(runID, err)
		}
		res = append(res, e)
	}
	if err = rows.Err(); err != nil {
		return nil, LedgerReadError(runID, err)
	}
	return res, nil
}

func (l *pgLedger) Close() error {
	l.pool.Close()
	return nil
}
