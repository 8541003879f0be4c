package artifact_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	prefix string
	data   map[string][]byte
	err    error
}

func (m *memStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.data[name] = data
	return m.prefix + name, nil
}

func TestMulti(t *testing.T) {
	a := &memStore{prefix: "a/", data: map[string][]byte{}}
	b := &memStore{prefix: "b/", data: map[string][]byte{}}
	m := artifact.Multi{a, b}

	loc, err := m.Save(context.Background(), "x.xml", []byte("<data/>"))
	require.NoError(t, err)
	assert.Equal(t, "a/x.xml", loc)
	assert.Equal(t, []byte("<data/>"), b.data["x.xml"])

	b.err = errors.New("boom")
	loc, err = m.Save(context.Background(), "y.xml", nil)
	assert.Error(t, err)
	assert.Equal(t, "a/y.xml", loc)
}
