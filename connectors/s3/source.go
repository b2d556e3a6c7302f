package s3

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"

	"github.com/alexeiveselov92/dft-pipeline/connectors/csv"
	"github.com/alexeiveselov92/dft-pipeline/internal/ctxlog"
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

type source struct {
	cc *clientConfig
}

func newSource(cfg map[string]any) (*source, error) {
	cc, err := newClientConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &source{cc: cc}, nil
}

func (s *source) Extract(ctx context.Context, _ plugin.RunContext) (*plugin.Artifact, error) {
	obj, err := s.cc.client.GetObject(ctx, s.cc.bucket, s.cc.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", s.cc.bucket, s.cc.key, err)
	}
	defer obj.Close()

	artifact, err := csv.DecodeArtifact(obj, fmt.Sprintf("s3://%s/%s", s.cc.bucket, s.cc.key))
	if err != nil {
		return nil, fmt.Errorf("decoding s3://%s/%s: %w", s.cc.bucket, s.cc.key, err)
	}
	artifact.AddMetadata("bucket", s.cc.bucket)
	artifact.AddMetadata("key", s.cc.key)

	ctxlog.FromContext(ctx).Debug().
		Str("bucket", s.cc.bucket).
		Str("key", s.cc.key).
		Int("rows", artifact.RowCount()).
		Msg("Extracted object from s3")
	return artifact, nil
}

func (s *source) TestConnection(ctx context.Context) error {
	ok, err := s.cc.client.BucketExists(ctx, s.cc.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.cc.bucket)
	}
	return nil
}
