package csv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/alexeiveselov92/dft-pipeline/internal/ctxlog"
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

type endpoint struct {
	filePath string
	mode     string
}

func newEndpoint(cfg map[string]any) (plugin.Endpoint, error) {
	path, ok := plugin.ConfigString(cfg, "file_path")
	if !ok {
		return nil, fmt.Errorf("csv endpoint: file_path is required")
	}
	mode := plugin.ConfigStringDefault(cfg, "mode", "replace")
	if mode != "replace" && mode != "append" {
		return nil, fmt.Errorf("csv endpoint: unknown mode %q", mode)
	}
	return &endpoint{filePath: path, mode: mode}, nil
}

func (e *endpoint) Load(ctx context.Context, inputs map[string]*plugin.Artifact, _ plugin.RunContext) error {
	if len(inputs) == 0 {
		return fmt.Errorf("csv endpoint: no upstream artifact")
	}

	if err := os.MkdirAll(filepath.Dir(e.filePath), 0o755); err != nil {
		return fmt.Errorf("csv endpoint: %w", err)
	}

	exists := false
	if _, err := os.Stat(e.filePath); err == nil {
		exists = true
	}

	flags := os.O_CREATE | os.O_WRONLY
	withHeader := true
	if e.mode == "append" && exists {
		flags |= os.O_APPEND
		withHeader = false
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(e.filePath, flags, 0o644)
	if err != nil {
		return fmt.Errorf("csv endpoint: %w", err)
	}
	defer f.Close()

	var total int
	for i, key := range sortedKeys(inputs) {
		a := inputs[key]
		if err := EncodeArtifact(f, a, withHeader && i == 0); err != nil {
			return fmt.Errorf("csv endpoint %s: %w", e.filePath, err)
		}
		total += a.RowCount()
	}

	ctxlog.FromContext(ctx).Debug().Str("file", e.filePath).Int("rows", total).Msg("Wrote csv file")
	return nil
}

// TestConnection verifies the target directory is writable.
func (e *endpoint) TestConnection(_ context.Context) error {
	dir := filepath.Dir(e.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".dft-probe-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func sortedKeys(inputs map[string]*plugin.Artifact) []string {
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
