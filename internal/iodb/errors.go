package iodb

import (
	"fmt"
	"runtime"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/errcode"
	"github.com/gnames/gn"
)

// LedgerOpenError is returned when the ledger cannot be opened or
// prepared.
func LedgerOpenError(driver, location string, err error) error {
	msg := `Cannot open <em>%s</em> ledger at <em>%s</em>

<em>How to fix:</em>
  1. Check ledger settings in the config file
  2. Set ledger.driver to 'none' to run without a ledger`
	vars := []any{driver, location}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.LedgerOpenError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot open ledger: %w", fn.Name(), err),
	}
}

// LedgerWriteError is returned when an entry cannot be stored.
func LedgerWriteError(runID string, row int, err error) error {
	msg := "Cannot record row <em>%d</em> of run <em>%s</em> in the ledger"
	vars := []any{row, runID}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.LedgerWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: ledger write: %w", fn.Name(), err),
	}
}

// LedgerReadError is returned when the entries of a run cannot be read.
func LedgerReadError(runID string, err error) error {
	msg := "Cannot read entries of run <em>%s</em> from the ledger"
	vars := []any{runID}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.LedgerReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: ledger read: %w", fn.Name(), err),
	}
}
