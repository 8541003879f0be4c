// Package ioartifact stores rendered instance documents on the local file
// system and in S3-compatible buckets.
package ioartifact

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/artifact"
)

type fsStore struct {
	dir string
}

// NewFS creates a store writing files into dir. The directory is created
// on first save.
func NewFS(dir string) artifact.Store {
	return &fsStore{dir: dir}
}

func (s *fsStore) Save(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(s.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", ArtifactWriteError(path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", ArtifactWriteError(path, err)
	}
	return path, nil
}
