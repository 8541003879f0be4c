// Package iodb implements ledger.Ledger on SQLite and PostgreSQL.
// This is an impure I/O package that implements contracts
// defined in pkg/ledger.
package iodb

import (
	"context"
	"path/filepath"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/ledger"
)

// SQLiteFile is the name of the sqlite ledger in the output directory.
const SQLiteFile = "ledger.sqlite"

const table = "import_ledger"

// Open creates the ledger selected by cfg.Driver. The sqlite ledger lives
// in outputDir.
func Open(
	ctx context.Context,
	cfg config.LedgerConfig,
	outputDir string,
) (ledger.Ledger, error) {
	switch cfg.Driver {
	case "sqlite":
		return OpenSQLite(ctx, filepath.Join(outputDir, SQLiteFile))
	case "postgres":
		return OpenPostgres(ctx, cfg)
	default:
		return ledger.Nop{}, nil
	}
}
