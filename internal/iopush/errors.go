package iopush

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/errcode"
	"github.com/gnames/gn"
)

var (
	// ErrStructure is wrapped by errors of datasets failing validation in
	// strict mode.
	ErrStructure = errors.New("dataset structure is invalid")
	// ErrMissingColumn is wrapped by errors about absent identifier
	// columns.
	ErrMissingColumn = errors.New("required identifier column is absent")
)

// StructureInvalidError is returned in strict mode when the dataset fails
// structural validation.
func StructureInvalidError(problems []string) error {
	msg := `Dataset does not match the form

%s

<em>How to fix:</em>
  1. Add the missing columns or fix their types
  2. Or run without --strict to coerce recoverable mismatches`
	var lines []string
	for _, p := range problems {
		lines = append(lines, "  * "+p)
	}
	vars := []any{strings.Join(lines, "\n")}
	return &gn.Error{
		Code: errcode.StructureInvalidError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("%w: %s", ErrStructure, strings.Join(problems, "; ")),
	}
}

// UnsupportedStrategyError is returned for unknown strategy names.
func UnsupportedStrategyError(err error) error {
	msg := `Unsupported import strategy

<em>Valid values are:</em>
  * CREATE
  * UPDATE
  * CREATE_AND_UPDATE
  * DELETE`
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.UnsupportedStrategyError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: %w", fn.Name(), err),
	}
}

// MissingIDColumnError is returned when a strategy that addresses
// existing instances gets a dataset without the id column.
func MissingIDColumnError(strategy string) error {
	msg := "Strategy <em>%s</em> needs an <em>id</em> column"
	vars := []any{strategy}
	return &gn.Error{
		Code: errcode.MissingIDColumnError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("%w: id for %s", ErrMissingColumn, strategy),
	}
}

// MissingInstanceIDColumnError is returned when UPDATE gets a dataset
// without the instanceID column.
func MissingInstanceIDColumnError() error {
	msg := "Strategy <em>UPDATE</em> needs an <em>instanceID</em> column"
	return &gn.Error{
		Code: errcode.MissingInstanceIDColumnError,
		Msg:  msg,
		Err:  fmt.Errorf("%w: instanceID for UPDATE", ErrMissingColumn),
	}
}

// PermissionDeniedError is returned when the user may not push
// submissions to the project application.
func PermissionDeniedError(appID string) error {
	msg := `User has no role for application <em>%s</em>

<em>How to fix:</em>
  1. Grant the iaso_update_submission permission to the user
  2. Check that the user belongs to the account of the project`
	vars := []any{appID}
	return &gn.Error{
		Code: errcode.PermissionDeniedError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no update permission for app %s", appID),
	}
}

// ScratchDirError is returned when the run directory for rendered
// documents cannot be created.
func ScratchDirError(err error) error {
	msg := "Cannot create a scratch directory"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ScratchDirError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: %w", fn.Name(), err),
	}
}

// SummaryWriteError is returned when a run report cannot be saved.
func SummaryWriteError(path string, err error) error {
	msg := "Cannot write report <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SummaryWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot write %s: %w", fn.Name(), path, err),
	}
}
