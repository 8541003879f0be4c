// Package push defines import strategies, per-row outcomes and the
// summary of a push run.
package push

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
)

// ErrUnsupportedStrategy is returned for unknown strategy names.
var ErrUnsupportedStrategy = errors.New("unsupported import strategy")

// Strategy selects the remote operation triggered by each row.
type Strategy string

const (
	Create          Strategy = "CREATE"
	Update          Strategy = "UPDATE"
	CreateAndUpdate Strategy = "CREATE_AND_UPDATE"
	Delete          Strategy = "DELETE"
)

// ParseStrategy converts a name into a Strategy, ignoring case.
func ParseStrategy(s string) (Strategy, error) {
	res := Strategy(strings.ToUpper(strings.TrimSpace(s)))
	switch res {
	case Create, Update, CreateAndUpdate, Delete:
		return res, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedStrategy, s)
}

// Outcome is the state of one row.
type Outcome string

const (
	Pending  Outcome = "pending"
	Imported Outcome = "imported"
	Updated  Outcome = "updated"
	Ignored  Outcome = "ignored"
	Deleted  Outcome = "deleted"
)

// Summary counts terminal row outcomes.
type Summary struct {
	Imported int `yaml:"imported" json:"imported"`
	Updated  int `yaml:"updated"  json:"updated"`
	Ignored  int `yaml:"ignored"  json:"ignored"`
	Deleted  int `yaml:"deleted"  json:"deleted"`
}

// Add counts one terminal outcome. Pending is not counted.
func (s *Summary) Add(o Outcome) {
	switch o {
	case Imported:
		s.Imported++
	case Updated:
		s.Updated++
	case Ignored:
		s.Ignored++
	case Deleted:
		s.Deleted++
	}
}

// Merge returns the sum of two summaries.
func (s Summary) Merge(o Summary) Summary {
	return Summary{
		Imported: s.Imported + o.Imported,
		Updated:  s.Updated + o.Updated,
		Ignored:  s.Ignored + o.Ignored,
		Deleted:  s.Deleted + o.Deleted,
	}
}

// Total returns the number of counted rows.
func (s Summary) Total() int {
	return s.Imported + s.Updated + s.Ignored + s.Deleted
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"imported: %d, updated: %d, ignored: %d, deleted: %d",
		s.Imported, s.Updated, s.Ignored, s.Deleted,
	)
}

// RowResult is the terminal state of one row.
type RowResult struct {
	Row          int
	Outcome      Outcome
	InstanceUUID string
	InstanceID   int64
	Message      string
}

// Params are the settings of one push run.
type Params struct {
	RunID     string
	ProjectID int
	FormID    int
	AppID     string
	FormName  string
	Strategy  Strategy
	Strict    bool
	OutputDir string
}

// Pusher sends a dataset to the platform.
type Pusher interface {
	Push(ctx context.Context, ds *dataset.Frame, p Params) (Summary, error)
}
