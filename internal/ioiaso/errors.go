package ioiaso

import (
	"fmt"
	"runtime"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/errcode"
	"github.com/gnames/gn"
)

// AuthError is returned when the platform refuses the credentials.
func AuthError(url, user string, err error) error {
	msg := `Cannot authenticate <em>%s</em> at <em>%s</em>

<em>How to fix:</em>
  1. Check iaso.username and iaso.password in the config file
     or IASOIMPORT_IASO_USERNAME/IASOIMPORT_IASO_PASSWORD
  2. Check that iaso.url points to the platform`
	vars := []any{user, url}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RemoteAuthError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot get token: %w", fn.Name(), err),
	}
}

// RequestError is returned when a required platform call fails.
func RequestError(what string, err error) error {
	msg := "Cannot get <em>%s</em> from the platform"
	vars := []any{what}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RemoteRequestError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot get %s: %w", fn.Name(), what, err),
	}
}

// AppIDError is returned when a project has no application id.
func AppIDError(projectID int) error {
	msg := "Project <em>%d</em> has no app_id"
	vars := []any{projectID}
	return &gn.Error{
		Code: errcode.ProjectAppIDError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("project %d has no app_id", projectID),
	}
}
