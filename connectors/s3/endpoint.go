package s3

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/minio/minio-go/v7"

	"github.com/alexeiveselov92/dft-pipeline/connectors/csv"
	"github.com/alexeiveselov92/dft-pipeline/internal/ctxlog"
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

type endpoint struct {
	cc *clientConfig
}

func newEndpoint(cfg map[string]any) (*endpoint, error) {
	cc, err := newClientConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &endpoint{cc: cc}, nil
}

func (e *endpoint) Load(ctx context.Context, inputs map[string]*plugin.Artifact, _ plugin.RunContext) error {
	if len(inputs) == 0 {
		return fmt.Errorf("s3 endpoint received no input artifacts")
	}

	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	total := 0
	for i, name := range names {
		artifact := inputs[name]
		if err := csv.EncodeArtifact(&buf, artifact, i == 0); err != nil {
			return fmt.Errorf("encoding artifact %q: %w", name, err)
		}
		total += artifact.RowCount()
	}

	_, err := e.cc.client.PutObject(ctx, e.cc.bucket, e.cc.key, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", e.cc.bucket, e.cc.key, err)
	}

	ctxlog.FromContext(ctx).Debug().
		Str("bucket", e.cc.bucket).
		Str("key", e.cc.key).
		Int("rows", total).
		Msg("Uploaded object to s3")
	return nil
}

func (e *endpoint) TestConnection(ctx context.Context) error {
	ok, err := e.cc.client.BucketExists(ctx, e.cc.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", e.cc.bucket)
	}
	return nil
}
