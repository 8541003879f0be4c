package ioartifact

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/artifact"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// region avoids bucket location lookups, S3-compatible servers accept it.
const region = "us-east-1"

type s3Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewS3 connects to the bucket of cfg, creating the bucket if needed.
// Objects are stored as <prefix>/<name>.
func NewS3(
	ctx context.Context,
	cfg config.ArtifactsConfig,
	prefix string,
) (artifact.Store, error) {
	location := fmt.Sprintf("%s/%s", cfg.Endpoint, cfg.Bucket)
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, ArtifactWriteError(location, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, ArtifactWriteError(location, err)
	}
	if !exists {
		opts := minio.MakeBucketOptions{Region: region}
		if err = client.MakeBucket(ctx, cfg.Bucket, opts); err != nil {
			return nil, ArtifactWriteError(location, err)
		}
	}

	return &s3Store{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

func (s *s3Store) Save(ctx context.Context, name string, data []byte) (string, error) {
	key := path.Join(s.prefix, name)
	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/xml"},
	)
	if err != nil {
		return "", ArtifactWriteError(location, err)
	}
	return location, nil
}
