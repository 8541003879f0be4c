package iopush

import (
	"strings"
	"time"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
)

// Dataset columns with a meaning for the platform.
const (
	colID          = "id"
	colInstanceID  = "instanceID"
	colOrgUnitID   = "org_unit_id"
	colCreatedAt   = "created_at"
	colFormVersion = "form_version"
	colLatitude    = "latitude"
	colLongitude   = "longitude"
	colAccuracy    = "accuracy"
	colAltitude    = "altitude"
)

var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// toInt64 reads an integer identifier. Text and integral floats are
// accepted, infinities and values outside the int64 range are not.
func toInt64(v any) (int64, bool) {
	if isNull(v) {
		return 0, false
	}
	res, ok := dataset.Convert(v, dataset.Int64)
	if !ok {
		return 0, false
	}
	i, ok := res.(int64)
	return i, ok
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func floatPtr(rec dataset.Record, col string) *float64 {
	v, ok := rec[col]
	if !ok || isNull(v) {
		return nil
	}
	f, ok := dataset.ToFloat(v)
	if !ok {
		return nil
	}
	return &f
}

// createdAt returns the submission time of a record, now when the record
// has none or it cannot be parsed.
func createdAt(rec dataset.Record, now time.Time) time.Time {
	switch v := rec[colCreatedAt].(type) {
	case string:
		s := strings.TrimSpace(v)
		for _, l := range createdAtLayouts {
			if t, err := time.Parse(l, s); err == nil {
				return t
			}
		}
	case int64:
		return time.Unix(v, 0)
	}
	return now
}

// stripUUID removes the "uuid:" prefix of submission identifiers.
func stripUUID(v any) string {
	s := strings.TrimSpace(dataset.Format(v))
	return strings.TrimPrefix(s, "uuid:")
}
