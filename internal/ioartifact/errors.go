package ioartifact

import (
	"fmt"
	"runtime"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/errcode"
	"github.com/gnames/gn"
)

// ArtifactWriteError is returned when a document cannot be stored.
func ArtifactWriteError(location string, err error) error {
	msg := "Cannot store artifact <em>%s</em>"
	vars := []any{location}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ArtifactWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot store artifact: %w", fn.Name(), err),
	}
}
