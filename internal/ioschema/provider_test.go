package ioschema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aanoble/openhexa-pipelines-iaso/internal/ioschema"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/errcode"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeForms struct {
	urls      map[string]string
	files     map[string][]byte
	downloads int
	urlErr    error
}

func (f *fakeForms) FormName(context.Context, int) (string, error) {
	return "Household", nil
}

func (f *fakeForms) FormMeta(context.Context, int) (iaso.FormMeta, error) {
	return iaso.FormMeta{}, nil
}

func (f *fakeForms) DefinitionURL(
	_ context.Context,
	_ int,
	version string,
) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return f.urls[version], nil
}

func (f *fakeForms) Download(_ context.Context, u string) ([]byte, error) {
	f.downloads++
	return f.files[u], nil
}

func xlsForm(t *testing.T, survey, choices [][]any) []byte {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "survey"))
	for i, row := range survey {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("survey", cell, &row))
	}
	if choices != nil {
		_, err := f.NewSheet(ioschema.ChoicesSheet)
		require.NoError(t, err)
		for i, row := range choices {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(ioschema.ChoicesSheet, cell, &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func householdForm(t *testing.T) []byte {
	return xlsForm(t,
		[][]any{
			{"type", "name", "label", "required", "constraint"},
			{"begin group", "household", "Household"},
			{"integer", " age ", "Age", "yes", ".>=0"},
			{},
			{"select_one sex", "sex", "Sex  "},
			{"end group", ""},
		},
		[][]any{
			{"list_name", "name", "label"},
			{"sex", "m", "Male"},
			{"sex", "f", "Female"},
		},
	)
}

func TestSchema(t *testing.T) {
	forms := &fakeForms{
		urls:  map[string]string{"": "https://files.example.org/latest.xlsx"},
		files: map[string][]byte{"https://files.example.org/latest.xlsx": householdForm(t)},
	}
	cache := ioschema.NewCache()
	p := ioschema.New(forms, cache)
	ctx := context.Background()

	qs, err := p.Schema(ctx, 5, "", form.Questions)
	require.NoError(t, err)
	assert.Equal(t, []string{"type", "name", "label", "required", "constraint"},
		qs.Header)
	assert.Equal(t, 4, qs.Len(), "empty row dropped")
	assert.Equal(t, "age", qs.Value(1, "name"))
	assert.Equal(t, "Sex", qs.Value(2, "label"))
	assert.Equal(t, "", qs.Value(2, "constraint"))

	cs, err := p.Schema(ctx, 5, form.Latest, form.Choices)
	require.NoError(t, err)
	assert.Equal(t, 2, cs.Len())
	assert.Equal(t, "Female", cs.Value(1, "label"))

	assert.Equal(t, 1, forms.downloads, "definition downloaded once")
	assert.Equal(t, 2, cache.Len())

	_, err = p.Schema(ctx, 5, "", form.Questions)
	require.NoError(t, err)
	assert.Equal(t, 1, forms.downloads)

	schema, err := form.Load(ctx, p, 5, "")
	require.NoError(t, err)
	require.Len(t, schema.Questions, 3)
	assert.True(t, schema.Questions[1].Required)
	assert.True(t, schema.HasChoiceLists)
	assert.Equal(t, []string{"Male", "Female"}, form.Labels(schema.Choices, "sex"))
}

func TestSchemaVersions(t *testing.T) {
	v2 := xlsForm(t, [][]any{{"type", "name"}, {"text", "comment"}}, nil)
	forms := &fakeForms{
		urls: map[string]string{
			"":   "https://files.example.org/latest.xlsx",
			"v2": "https://files.example.org/v2.xlsx",
		},
		files: map[string][]byte{
			"https://files.example.org/latest.xlsx": householdForm(t),
			"https://files.example.org/v2.xlsx":     v2,
		},
	}
	p := ioschema.New(forms, nil)
	ctx := context.Background()

	qs, err := p.Schema(ctx, 5, "v2", form.Questions)
	require.NoError(t, err)
	assert.Equal(t, 1, qs.Len())

	cs, err := p.Schema(ctx, 5, "v2", form.Choices)
	require.NoError(t, err)
	assert.Equal(t, 0, cs.Len(), "no choices sheet")

	_, err = p.Schema(ctx, 5, "", form.Questions)
	require.NoError(t, err)
	assert.Equal(t, 2, forms.downloads)
}

func TestSchemaNoDefinition(t *testing.T) {
	forms := &fakeForms{urls: map[string]string{}}
	p := ioschema.New(forms, nil)

	res, err := p.Schema(context.Background(), 5, "old", form.Questions)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
	assert.Empty(t, res.Header)
	assert.Equal(t, 0, forms.downloads)
}

func TestSchemaErrors(t *testing.T) {
	t.Run("fetch", func(t *testing.T) {
		origErr := errors.New("boom")
		forms := &fakeForms{urlErr: origErr}
		p := ioschema.New(forms, nil)

		_, err := p.Schema(context.Background(), 5, "", form.Questions)
		require.Error(t, err)
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok)
		assert.Equal(t, errcode.SchemaFetchError, gnErr.Code)
		assert.Equal(t, []any{5, form.Latest}, gnErr.Vars)
		assert.ErrorIs(t, gnErr.Err, origErr)
	})

	t.Run("parse", func(t *testing.T) {
		forms := &fakeForms{
			urls:  map[string]string{"": "https://files.example.org/bad.xlsx"},
			files: map[string][]byte{"https://files.example.org/bad.xlsx": []byte("not a spreadsheet")},
		}
		p := ioschema.New(forms, nil)

		_, err := p.Schema(context.Background(), 5, "", form.Questions)
		require.Error(t, err)
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok)
		assert.Equal(t, errcode.SchemaParseError, gnErr.Code)
	})
}
