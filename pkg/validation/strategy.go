package validation

import "github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"

// Requirements are the column contract of an import strategy.
type Requirements struct {
	Required []string
	Optional []string
	// Types lists accepted types per column.
	Types map[string][]dataset.Type
}

// created_at arrives as text in CSV files.
var createdAtTypes = []dataset.Type{dataset.String}

// StrategyRequirements holds the column contract per strategy.
var StrategyRequirements = map[string]Requirements{
	"CREATE": {
		Required: []string{"org_unit_id"},
		Optional: []string{"created_at", "form_version", "latitude", "longitude"},
		Types: map[string][]dataset.Type{
			"org_unit_id":  {dataset.Int64},
			"created_at":   createdAtTypes,
			"form_version": {dataset.String},
		},
	},
	"UPDATE": {
		Required: []string{"id", "org_unit_id"},
		Optional: []string{"created_at", "form_version", "instanceID",
			"accuracy", "altitude", "latitude", "longitude"},
		Types: map[string][]dataset.Type{
			"id":          {dataset.String},
			"org_unit_id": {dataset.Int64},
			"created_at":  createdAtTypes,
		},
	},
	"CREATE_AND_UPDATE": {
		Required: []string{"org_unit_id", "created_at"},
		Optional: []string{"id", "form_version", "instanceID",
			"latitude", "longitude"},
		Types: map[string][]dataset.Type{
			"org_unit_id": {dataset.Int64},
			"created_at":  createdAtTypes,
			"id":          {dataset.String},
		},
	},
	"DELETE": {
		Required: []string{"id"},
		Types: map[string][]dataset.Type{
			"id": {dataset.String},
		},
	},
}

// questionTypes maps question types to expected column types.
var questionTypes = map[string]dataset.Type{
	"text":      dataset.String,
	"integer":   dataset.Int64,
	"calculate": dataset.Float64,
}
