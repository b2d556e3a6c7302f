package csv

import (
	"context"
	"fmt"
	"os"

	"github.com/alexeiveselov92/dft-pipeline/internal/ctxlog"
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

type source struct {
	filePath string
}

func newSource(cfg map[string]any) (plugin.Source, error) {
	path, ok := plugin.ConfigString(cfg, "file_path")
	if !ok {
		return nil, fmt.Errorf("csv source: file_path is required")
	}
	return &source{filePath: path}, nil
}

func (s *source) Extract(ctx context.Context, _ plugin.RunContext) (*plugin.Artifact, error) {
	f, err := os.Open(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("csv source: %w", err)
	}
	defer f.Close()

	artifact, err := DecodeArtifact(f, "csv:"+s.filePath)
	if err != nil {
		return nil, fmt.Errorf("csv source %s: %w", s.filePath, err)
	}

	if info, err := f.Stat(); err == nil {
		artifact.AddMetadata("file_size", info.Size())
	}
	artifact.AddMetadata("file_path", s.filePath)

	ctxlog.FromContext(ctx).Debug().Str("file", s.filePath).Int("rows", artifact.RowCount()).Msg("Extracted csv file")
	return artifact, nil
}

// TestConnection verifies the file exists and is a regular readable file.
func (s *source) TestConnection(_ context.Context) error {
	info, err := os.Stat(s.filePath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", s.filePath)
	}
	f, err := os.Open(s.filePath)
	if err != nil {
		return err
	}
	return f.Close()
}
