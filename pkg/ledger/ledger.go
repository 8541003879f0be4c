// Package ledger declares the store of per-row outcomes of push runs.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/push"
	"github.com/gnames/gnuuid"
)

// Entry is one recorded row outcome.
type Entry struct {
	// ID is derived from RunID and Row, recording a row twice keeps one
	// entry.
	ID           string
	RunID        string
	Row          int
	Strategy     string
	Outcome      string
	InstanceUUID string
	InstanceID   int64
	Message      string
	CreatedAt    time.Time
}

// NewEntry creates an entry for a row result of a run.
func NewEntry(runID string, strategy push.Strategy, r push.RowResult) Entry {
	return Entry{
		ID:           gnuuid.New(fmt.Sprintf("%s|%d", runID, r.Row)).String(),
		RunID:        runID,
		Row:          r.Row,
		Strategy:     string(strategy),
		Outcome:      string(r.Outcome),
		InstanceUUID: r.InstanceUUID,
		InstanceID:   r.InstanceID,
		Message:      r.Message,
		CreatedAt:    time.Now().UTC(),
	}
}

// Ledger stores entries.
type Ledger interface {
	// Record stores an entry, replacing an entry with the same ID.
	Record(ctx context.Context, e Entry) error
	// Entries returns the entries of a run ordered by row.
	Entries(ctx context.Context, runID string) ([]Entry, error)
	Close() error
}

// Nop is a Ledger that keeps nothing.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) Entries(context.Context, string) ([]Entry, error) { return nil, nil }

func (Nop) Close() error { return nil }
