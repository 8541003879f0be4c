package iodataset

import (
	"fmt"
	"runtime"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/errcode"
	"github.com/gnames/gn"
)

// DatasetReadError is returned when the input file cannot be read.
func DatasetReadError(path string, err error) error {
	msg := "Cannot read submissions from <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DatasetReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot read %s: %w", fn.Name(), path, err),
	}
}

// DatasetEmptyError is returned when the input file has no rows.
func DatasetEmptyError(path string) error {
	msg := "File <em>%s</em> has no submissions"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.DatasetEmptyError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("empty dataset %s", path),
	}
}

// DatasetFormatError is returned for files that are not CSV, XLSX or
// Parquet.
func DatasetFormatError(path, ext string) error {
	msg := `Unsupported file format <em>%s</em> of <em>%s</em>

Use a .csv, .xlsx or .parquet file, save .xls workbooks as .xlsx`
	vars := []any{ext, path}
	return &gn.Error{
		Code: errcode.DatasetFormatError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unsupported format %q of %s", ext, path),
	}
}
