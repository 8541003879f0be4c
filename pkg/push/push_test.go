package push_test

import (
	"testing"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		msg   string
		input string
		res   push.Strategy
	}{
		{"create", "CREATE", push.Create},
		{"lower case", "update", push.Update},
		{"spaces", " create_and_update ", push.CreateAndUpdate},
		{"delete", "Delete", push.Delete},
	}
	for _, v := range tests {
		res, err := push.ParseStrategy(v.input)
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.res, res, v.msg)
	}

	_, err := push.ParseStrategy("UPSERT")
	assert.ErrorIs(t, err, push.ErrUnsupportedStrategy)
}

func TestSummary(t *testing.T) {
	assert := assert.New(t)
	var s push.Summary
	for _, o := range []push.Outcome{
		push.Imported, push.Imported, push.Ignored, push.Pending, push.Deleted,
	} {
		s.Add(o)
	}
	assert.Equal(push.Summary{Imported: 2, Ignored: 1, Deleted: 1}, s)
	assert.Equal(4, s.Total())

	m := s.Merge(push.Summary{Updated: 3, Ignored: 1})
	assert.Equal(push.Summary{Imported: 2, Updated: 3, Ignored: 2, Deleted: 1}, m)
	assert.Equal("imported: 2, updated: 3, ignored: 2, deleted: 1", m.String())
}
