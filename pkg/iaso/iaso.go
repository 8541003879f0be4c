// Package iaso declares the remote platform operations used by the import
// and the data they exchange.
package iaso

import (
	"context"
	"fmt"
	"slices"
)

// UpdateSubmissionPermission is required to push submissions.
const UpdateSubmissionPermission = "iaso_update_submission"

// FormMeta is the part of a form description needed to render instances.
type FormMeta struct {
	// FormID is the textual form id used as the id attribute of instances.
	FormID          string
	OrgUnitTypeIDs  []int
	LatestVersionID string
	LatestXLSFile   string
}

// Profile describes the authenticated user.
type Profile struct {
	Permissions []string
	Accounts    []string
}

// HasRole reports whether the user may push submissions to the app.
func (p Profile) HasRole(appID string) bool {
	return slices.Contains(p.Permissions, UpdateSubmissionPermission) &&
		slices.Contains(p.Accounts, appID)
}

// NewInstance is the body of an instance creation call.
type NewInstance struct {
	ID        string   `json:"id"`
	OrgUnitID int64    `json:"orgUnitId"`
	CreatedAt int64    `json:"created_at"`
	FormID    int      `json:"formId"`
	Accuracy  float64  `json:"accuracy"`
	Altitude  float64  `json:"altitude"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	File      string   `json:"file"`
	Name      string   `json:"name"`
	Period    int      `json:"period"`
}

// InstancePatch holds mutable attributes of an existing instance, nil
// fields are not sent.
type InstancePatch struct {
	OrgUnitID *int64   `json:"org_unit,omitempty"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Instance is an existing submission.
type Instance struct {
	ID      int64
	UUID    string
	FileURL string
}

// StatusError is returned when the platform answers with a non-success
// status.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// Forms gives access to form descriptions and definitions.
type Forms interface {
	// FormName returns the display name of a form.
	FormName(ctx context.Context, formID int) (string, error)
	// FormMeta returns the description of a form.
	FormMeta(ctx context.Context, formID int) (FormMeta, error)
	// DefinitionURL returns the location of the form definition file for a
	// version, empty version means the latest one. An empty URL means the
	// form has no definition.
	DefinitionURL(ctx context.Context, formID int, version string) (string, error)
	// Download fetches a file by its absolute URL.
	Download(ctx context.Context, url string) ([]byte, error)
}

// Instances manipulates submissions.
type Instances interface {
	CreateInstance(ctx context.Context, appID string, inst NewInstance) error
	// UploadSubmission sends the instance document of a created instance.
	UploadSubmission(ctx context.Context, name string, doc []byte) error
	PatchInstance(ctx context.Context, id int64, patch InstancePatch) error
	Instance(ctx context.Context, id int64) (Instance, error)
	Download(ctx context.Context, url string) ([]byte, error)
	// EditURL opens an edit session for an instance UUID.
	EditURL(ctx context.Context, uuid string) (string, error)
	// SubmitEdit sends an edited instance document to an edit session.
	SubmitEdit(ctx context.Context, editURL, name string, doc []byte) error
	DeleteInstance(ctx context.Context, id int64) error
	// UserID returns the id of the authenticated user.
	UserID() string
}

// Account describes the user and the project.
type Account interface {
	AppID(ctx context.Context, projectID int) (string, error)
	Profile(ctx context.Context) (Profile, error)
}

// API is the complete remote platform.
type API interface {
	Forms
	Instances
	Account
}
