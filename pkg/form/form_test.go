package form_test

import (
	"context"
	"testing"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestions(t *testing.T) {
	assert := assert.New(t)
	s := form.Sheet{
		Header: []string{"type", "name", "label::English", "required",
			"constraint", "calculation"},
		Rows: [][]string{
			{"begin group", "grp", "Group", "", "", ""},
			{"integer", "age", "Age", "yes", ".>=0", ""},
			{"select_one sex", "sex", "Sex", "", "", ""},
			{"calculate", "double_age", "", "", "", "${age} * 2"},
			{"note", "", "A note", "", "", ""},
			{"integer", "age", "Age again", "", "", ""},
		},
	}
	qs := form.ParseQuestions(s)
	require.Len(t, qs, 4)

	assert.True(qs[0].IsBeginGroup())
	assert.Equal("Age", qs[1].Label)
	assert.True(qs[1].Required)
	assert.Equal(".>=0", qs[1].Constraint)
	assert.True(qs[2].IsSelect())
	assert.False(qs[2].Required)
	assert.True(qs[3].IsCalculate())
	assert.Equal("${age} * 2", qs[3].Calculation)
}

func TestParseChoices(t *testing.T) {
	tests := []struct {
		msg    string
		sheet  form.Sheet
		len    int
		hasCol bool
	}{
		{
			msg: "list name with space",
			sheet: form.Sheet{
				Header: []string{"list name", "name", "label"},
				Rows:   [][]string{{"sex", "m", "Male"}, {"sex", "f", "Female"}},
			},
			len:    2,
			hasCol: true,
		},
		{
			msg: "list_name with underscore",
			sheet: form.Sheet{
				Header: []string{"list_name", "value", "label"},
				Rows:   [][]string{{"sex", "m", "Male"}, {"", "x", "X"}},
			},
			len:    1,
			hasCol: true,
		},
		{
			msg: "no list column",
			sheet: form.Sheet{
				Header: []string{"name", "label"},
				Rows:   [][]string{{"m", "Male"}},
			},
			len:    0,
			hasCol: false,
		},
	}

	for _, v := range tests {
		cs, ok := form.ParseChoices(v.sheet)
		assert.Equal(t, v.hasCol, ok, v.msg)
		assert.Len(t, cs, v.len, v.msg)
	}
}

func TestLabels(t *testing.T) {
	cs := []form.Choice{
		{ListName: "sex", Value: "m", Label: "Male"},
		{ListName: "yn", Value: "y", Label: "Yes"},
		{ListName: "sex", Value: "f", Label: "Female"},
	}
	assert.Equal(t, []string{"Male", "Female"}, form.Labels(cs, "sex"))
	assert.Empty(t, form.Labels(cs, "other"))
}

func TestSchemaKey(t *testing.T) {
	k := form.NewSchemaKey(5, "", form.Choices)
	assert.Equal(t, form.Latest, k.Version)
	assert.Equal(t, "5/latest/choices", k.String())
}

type stubProvider map[form.Kind]form.Sheet

func (s stubProvider) Schema(
	_ context.Context, _ int, _ string, kind form.Kind,
) (form.Sheet, error) {
	return s[kind], nil
}

func TestLoad(t *testing.T) {
	p := stubProvider{
		form.Questions: {
			Header: []string{"type", "name"},
			Rows:   [][]string{{"text", "name"}},
		},
		form.Choices: {
			Header: []string{"list_name", "name", "label"},
		},
	}
	res, err := form.Load(context.Background(), p, 1, "")
	require.NoError(t, err)
	assert.Len(t, res.Questions, 1)
	assert.True(t, res.HasChoiceLists)
	assert.Empty(t, res.Choices)
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		msg   string
		input string
		res   string
	}{
		{"accents", "Enquête Ménage", "enquete_menage"},
		{"punctuation", " Form (v2)! ", "form_v2"},
		{"keeps dash", "PMA-2024 survey", "pma-2024_survey"},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, form.CleanName(v.input), v.msg)
	}
}
