package ioconfig

import (
	"fmt"
	"runtime"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/errcode"
	"github.com/gnames/gn"
)

// ConfigLoadError is returned when the config file cannot be read or
// decoded.
func ConfigLoadError(path string, err error) error {
	msg := `Cannot load configuration from <em>%s</em>

<em>How to fix:</em>
  1. Check the YAML syntax of the file
  2. Remove the file to regenerate defaults`
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ConfigLoadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot load config: %w", fn.Name(), err),
	}
}

// MissingValueError is returned when a setting needed by a command is
// not given.
func MissingValueError(name, flag, env string) error {
	msg := `Missing <em>%s</em>

<em>How to fix:</em>
  1. Use the %s flag
  2. Or set %s`
	vars := []any{name, flag, env}
	return &gn.Error{
		Code: errcode.ConfigMissingValueError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("missing %s", name),
	}
}
