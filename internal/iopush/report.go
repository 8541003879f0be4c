package iopush

import (
	"os"
	"time"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/push"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/validation"
	"github.com/gnames/gnfmt"
	"gopkg.in/yaml.v3"
)

const (
	// SummaryFile is the name of the push report in the output directory.
	SummaryFile = "import_summary.yaml"
	// ValidationFile is the name of the enriched dataset written by
	// Validate.
	ValidationFile = "validation_report.csv"
)

// report is the content of SummaryFile.
type report struct {
	RunID      string             `yaml:"run_id"`
	ProjectID  int                `yaml:"project_id"`
	FormID     int                `yaml:"form_id"`
	FormName   string             `yaml:"form_name"`
	Strategy   string             `yaml:"strategy"`
	Strict     bool               `yaml:"strict_validation"`
	Rows       int                `yaml:"rows"`
	StartedAt  string             `yaml:"started_at"`
	Duration   string             `yaml:"duration"`
	Summary    push.Summary       `yaml:"summary"`
	Validation validation.Outcome `yaml:"validation"`
}

func newReport(
	prm push.Params,
	rows int,
	start time.Time,
	duration time.Duration,
	summary push.Summary,
	outcome validation.Outcome,
) report {
	return report{
		RunID:      prm.RunID,
		ProjectID:  prm.ProjectID,
		FormID:     prm.FormID,
		FormName:   prm.FormName,
		Strategy:   string(prm.Strategy),
		Strict:     prm.Strict,
		Rows:       rows,
		StartedAt:  start.UTC().Format(time.RFC3339),
		Duration:   gnfmt.TimeString(duration.Seconds()),
		Summary:    summary,
		Validation: outcome,
	}
}

func writeReport(path string, r report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return SummaryWriteError(path, err)
	}
	if err = os.WriteFile(path, data, 0644); err != nil {
		return SummaryWriteError(path, err)
	}
	return nil
}
