package enrich

import (
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/constraint"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/dataset"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
)

// Rules are constraint and choice checks of one schema snapshot, compiled
// once and applied to many records.
type Rules struct {
	constraints  constraint.Set
	choices      map[string]map[string]struct{}
	checkChoices bool
}

// Compile prepares the rules of a schema.
func Compile(schema form.Schema) *Rules {
	res := &Rules{
		constraints:  compileConstraints(schema.Questions),
		checkChoices: schema.HasChoiceLists,
	}
	if res.checkChoices {
		res.choices = compileChoices(schema)
	}
	return res
}

// Valid reports whether every constrained and select field present in the
// record holds.
func (r *Rules) Valid(rec dataset.Record) bool {
	for name, v := range rec {
		if !r.constraints.Check(name, v) {
			return false
		}
		if !r.checkChoices {
			continue
		}
		if allowed, ok := r.choices[name]; ok && !isMember(allowed, v) {
			return false
		}
	}
	return true
}

// IsRowValid checks one record against a schema snapshot.
func IsRowValid(rec dataset.Record, schema form.Schema) bool {
	return Compile(schema).Valid(rec)
}

func compileConstraints(questions []form.Question) constraint.Set {
	res := make(constraint.Set)
	for _, q := range questions {
		if q.Constraint != "" {
			res[q.Name] = constraint.Parse(q.Constraint)
		}
	}
	return res
}

// compileChoices returns allowed labels per select question. A question
// without choices gets an empty set, so every value fails.
func compileChoices(schema form.Schema) map[string]map[string]struct{} {
	res := make(map[string]map[string]struct{})
	for _, q := range schema.Questions {
		if !q.IsSelect() {
			continue
		}
		set := make(map[string]struct{})
		for _, l := range form.Labels(schema.Choices, q.Name) {
			set[l] = struct{}{}
		}
		res[q.Name] = set
	}
	return res
}

func isMember(allowed map[string]struct{}, v any) bool {
	if v == nil {
		return false
	}
	_, ok := allowed[dataset.Format(v)]
	return ok
}
