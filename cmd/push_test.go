package cmd

import (
	"fmt"
	"testing"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/ledger"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetPushCmd_Flags verifies the import flags of push.
func TestGetPushCmd_Flags(t *testing.T) {
	cmd := getPushCmd()
	assert.Equal(t, "push", cmd.Use)
	assert.NotNil(t, cmd.RunE, "RunE should be set")

	tests := []struct {
		name, short string
	}{
		{"project-id", "p"},
		{"form-id", "f"},
		{"input-file", "i"},
		{"strategy", "s"},
		{"output-dir", "o"},
		{"strict", ""},
	}
	for _, v := range tests {
		flag := cmd.Flags().Lookup(v.name)
		require.NotNil(t, flag, v.name)
		assert.Equal(t, v.short, flag.Shorthand, v.name)
	}
	assert.Equal(t, "CREATE", cmd.Flags().Lookup("strategy").DefValue)
}

// TestGetValidateCmd_Flags verifies validate shares import flags.
func TestGetValidateCmd_Flags(t *testing.T) {
	cmd := getValidateCmd()
	assert.Equal(t, "validate", cmd.Use)
	for _, name := range []string{"form-id", "input-file", "strategy"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

// TestImportFlags_Options verifies only changed flags become options.
func TestImportFlags_Options(t *testing.T) {
	var flags importFlags
	cmd := &cobra.Command{Use: "test"}
	addImportFlags(cmd, &flags)
	err := cmd.ParseFlags([]string{"-f", "512", "-i", "data.csv", "-s", "delete"})
	require.NoError(t, err)

	c := config.New()
	c.Update([]config.Option{config.OptImportOutputDir("/tmp/out")})
	c.Update(flags.options(cmd))
	assert.Equal(t, 512, c.Import.FormID)
	assert.Equal(t, "data.csv", c.Import.InputFile)
	assert.Equal(t, "DELETE", c.Import.Strategy)
	// unchanged flags keep config values
	assert.Equal(t, "/tmp/out", c.Import.OutputDir)
	assert.Equal(t, 0, c.Import.ProjectID)
	assert.False(t, c.Import.StrictValidation)
}

// TestIgnoredRows verifies the listing of ignored ledger entries.
func TestIgnoredRows(t *testing.T) {
	assert := assert.New(t)
	var es []ledger.Entry
	for i := range 5 {
		es = append(es, ledger.Entry{
			Row: i, Outcome: "ignored", Message: fmt.Sprintf("bad %d", i),
		})
	}
	es = append(es, ledger.Entry{Row: 5, Outcome: "imported"})

	assert.Empty(ignoredRows(nil, 3))
	assert.Empty(ignoredRows(es[5:], 3))
	assert.Equal([]string{
		"  row 0: bad 0",
		"  row 1: bad 1",
		"  row 2: bad 2",
		"  ... and 2 more",
	}, ignoredRows(es, 3))
	assert.Len(ignoredRows(es, 10), 5)
}
