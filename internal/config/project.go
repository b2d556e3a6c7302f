// Package config loads the project file and the pipeline definitions.
// It is the boundary where YAML, environment overrides and template
// substitution happen; everything past this package works with the
// validated entity model only.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ProjectFile is the marker file that identifies a project root.
const ProjectFile = "dft_project.yml"

// ErrNotAProject is returned when the project file is missing from the
// working directory.
var ErrNotAProject = errors.New("not a dft project directory (dft_project.yml not found)")

// ProjectConfig is the parsed project file with defaults and DFT_*
// environment overrides applied.
type ProjectConfig struct {
	// ProjectName from the project file.
	ProjectName string
	// Dir is the project root directory.
	Dir string
	// PipelinesDir is relative to Dir.
	PipelinesDir string
	// Vars are the project-level default variables.
	Vars map[string]any
	// Connections are named connector option sets steps can reference
	// via a "connection" config key.
	Connections map[string]map[string]any
	// Concurrency bounds the pipeline worker pool.
	Concurrency int
	// LogLevel and LogFormat configure the run logger.
	LogLevel  string
	LogFormat string
	// StatePath is where the file state store lives, relative to Dir.
	StatePath string
}

// LoadProject reads and validates the project file in dir.
func LoadProject(dir string) (*ProjectConfig, error) {
	path := filepath.Join(dir, ProjectFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrNotAProject
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("pipelines_dir", "pipelines")
	v.SetDefault("concurrency", 4)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("state.path", filepath.Join(".dft", "state.json"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &ProjectConfig{
		ProjectName:  v.GetString("project_name"),
		Dir:          dir,
		PipelinesDir: v.GetString("pipelines_dir"),
		Vars:         v.GetStringMap("vars"),
		Connections:  make(map[string]map[string]any),
		Concurrency:  v.GetInt("concurrency"),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
		StatePath:    v.GetString("state.path"),
	}
	if cfg.ProjectName == "" {
		return nil, fmt.Errorf("%s: project_name is required", path)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	for name, raw := range v.GetStringMap("connections") {
		conn, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: connection %q must be a mapping", path, name)
		}
		cfg.Connections[name] = conn
	}

	return cfg, nil
}
