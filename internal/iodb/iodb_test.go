package iodb_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/aanoble/openhexa-pipelines-iaso/internal/iodb"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/errcode"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/ledger"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/push"
	"github.com/gnames/gn"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(runID string) []ledger.Entry {
	return []ledger.Entry{
		ledger.NewEntry(runID, push.Create, push.RowResult{
			Row: 1, Outcome: push.Ignored, Message: "missing org_unit_id",
		}),
		ledger.NewEntry(runID, push.Create, push.RowResult{
			Row: 0, Outcome: push.Imported, InstanceUUID: "u-0",
		}),
	}
}

func checkLedger(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()
	runID := uuid.NewString()

	for _, e := range entries(runID) {
		require.NoError(t, l.Record(ctx, e))
	}
	// recording the same row again replaces it
	again := ledger.NewEntry(runID, push.Create, push.RowResult{
		Row: 1, Outcome: push.Imported, InstanceUUID: "u-1", InstanceID: 77,
	})
	require.NoError(t, l.Record(ctx, again))

	res, err := l.Entries(ctx, runID)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, 0, res[0].Row)
	assert.Equal(t, "imported", res[0].Outcome)
	assert.Equal(t, "u-0", res[0].InstanceUUID)
	assert.Equal(t, 1, res[1].Row)
	assert.Equal(t, "u-1", res[1].InstanceUUID)
	assert.Equal(t, int64(77), res[1].InstanceID)
	assert.Equal(t, "CREATE", res[1].Strategy)
	assert.False(t, res[1].CreatedAt.IsZero())

	res, err = l.Entries(ctx, "other-run")
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSQLite(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	cfg := config.New().Ledger

	l, err := iodb.Open(ctx, cfg, dir)
	require.NoError(t, err)
	defer l.Close()

	checkLedger(t, l)
	_, err = os.Stat(filepath.Join(dir, iodb.SQLiteFile))
	assert.NoError(t, err)
}

func TestSQLiteOpenError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing", "dir")

	_, err := iodb.OpenSQLite(context.Background(), filepath.Join(dir, "l.sqlite"))
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.LedgerOpenError, gnErr.Code)
}

// TestSQLiteClosed verifies error codes of a closed ledger.
func TestSQLiteClosed(t *testing.T) {
	ctx := context.Background()
	l, err := iodb.OpenSQLite(ctx, filepath.Join(t.TempDir(), "l.sqlite"))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	err = l.Record(ctx, entries("run-1")[0])
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.LedgerWriteError, gnErr.Code)

	_, err = l.Entries(ctx, "run-1")
	gnErr, ok = err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.LedgerReadError, gnErr.Code)
	assert.Equal(t, []any{"run-1"}, gnErr.Vars)
}

func TestNone(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{config.OptLedgerDriver("none")})

	l, err := iodb.Open(context.Background(), cfg.Ledger, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, ledger.Nop{}, l)
}

func TestPostgres(t *testing.T) {
	host := os.Getenv("IASOIMPORT_TEST_PG_HOST")
	if testing.Short() || host == "" {
		t.Skip("set IASOIMPORT_TEST_PG_HOST to test postgres ledger")
	}
	cfg := config.New()
	opts := []config.Option{config.OptLedgerHost(host)}
	if s := os.Getenv("IASOIMPORT_TEST_PG_PORT"); s != "" {
		port, err := strconv.Atoi(s)
		require.NoError(t, err)
		opts = append(opts, config.OptLedgerPort(port))
	}
	if s := os.Getenv("IASOIMPORT_TEST_PG_PASSWORD"); s != "" {
		opts = append(opts, config.OptLedgerPassword(s))
	}
	cfg.Update(opts)

	l, err := iodb.OpenPostgres(context.Background(), cfg.Ledger)
	require.NoError(t, err)
	defer l.Close()

	checkLedger(t, l)
}

func TestErrors(t *testing.T) {
	originalErr := errors.New("disk I/O error")

	err := iodb.LedgerWriteError("run-1", 3, originalErr)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.LedgerWriteError, gnErr.Code)
	assert.Equal(t, []any{3, "run-1"}, gnErr.Vars)
	assert.ErrorIs(t, gnErr.Err, originalErr)

	err = iodb.LedgerReadError("run-1", originalErr)
	gnErr, ok = err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.LedgerReadError, gnErr.Code)
	assert.ErrorIs(t, gnErr.Err, originalErr)

	err = iodb.LedgerOpenError("sqlite", "/tmp/l.sqlite", originalErr)
	gnErr, ok = err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, []any{"sqlite", "/tmp/l.sqlite"}, gnErr.Vars)
}
