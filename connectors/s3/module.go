// Package s3 provides CSV-over-object-storage connectors backed by the
// MinIO client, which speaks to any S3-compatible endpoint.
package s3

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

// Module implements plugin.Module for this package.
type Module struct{}

// Register wires the s3 source and endpoint into the registry.
func (Module) Register(r *plugin.Registry) {
	r.RegisterSource("s3", func(cfg map[string]any) (plugin.Source, error) {
		return newSource(cfg)
	})
	r.RegisterEndpoint("s3", func(cfg map[string]any) (plugin.Endpoint, error) {
		return newEndpoint(cfg)
	})
}

type clientConfig struct {
	client *minio.Client
	bucket string
	key    string
}

func newClientConfig(cfg map[string]any) (*clientConfig, error) {
	endpoint, ok := plugin.ConfigString(cfg, "endpoint")
	if !ok {
		return nil, fmt.Errorf("s3 connector: endpoint is required")
	}
	bucket, ok := plugin.ConfigString(cfg, "bucket")
	if !ok {
		return nil, fmt.Errorf("s3 connector: bucket is required")
	}
	key, ok := plugin.ConfigString(cfg, "key")
	if !ok {
		return nil, fmt.Errorf("s3 connector: key is required")
	}
	accessKey := plugin.ConfigStringDefault(cfg, "access_key", "")
	secretKey := plugin.ConfigStringDefault(cfg, "secret_key", "")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: plugin.ConfigBool(cfg, "secure", true),
		Region: plugin.ConfigStringDefault(cfg, "region", ""),
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client for %s: %w", endpoint, err)
	}
	return &clientConfig{client: client, bucket: bucket, key: key}, nil
}
