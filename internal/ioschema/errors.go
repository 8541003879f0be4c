package ioschema

import (
	"fmt"
	"runtime"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/errcode"
	"github.com/gnames/gn"
)

// SchemaFetchError is returned when a form definition cannot be located
// or downloaded.
func SchemaFetchError(formID int, version string, err error) error {
	msg := `Cannot fetch definition of form <em>%d</em> (version <em>%s</em>)

<em>How to fix:</em>
  1. Check that the form exists and the user can see it
  2. Check the form_version values of the dataset`
	vars := []any{formID, version}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaFetchError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot fetch form definition: %w", fn.Name(), err),
	}
}

// SchemaParseError is returned when a downloaded definition is not a
// readable spreadsheet.
func SchemaParseError(formID int, version string, err error) error {
	msg := "Cannot parse definition of form <em>%d</em> (version <em>%s</em>)"
	vars := []any{formID, version}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SchemaParseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot parse form definition: %w", fn.Name(), err),
	}
}
