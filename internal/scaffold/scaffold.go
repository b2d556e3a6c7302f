// Package scaffold creates a new project skeleton: the project file, an
// example pipeline, sample data and the usual repo hygiene files.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

// Create materialises a new project named name in a directory of the
// same name under parent. pipelinesDir defaults to "pipelines" when
// empty. It refuses to touch a directory that already exists.
func Create(parent, name, pipelinesDir string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("project name is required")
	}
	if pipelinesDir == "" {
		pipelinesDir = "pipelines"
	}
	dir := filepath.Join(parent, name)
	if _, err := os.Stat(dir); err == nil {
		return "", fmt.Errorf("directory %q already exists", dir)
	}

	for _, sub := range []string{pipelinesDir, "data"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return "", fmt.Errorf("creating project layout: %w", err)
		}
	}

	files := map[string]string{
		"dft_project.yml": fmt.Sprintf(projectTemplate, name, pipelinesDir),
		filepath.Join(pipelinesDir, "example.yml"): pipelineTemplate,
		"data/example.csv":                         sampleData,
		".env":                                     envTemplate,
		".gitignore":                               gitignoreTemplate,
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(dir, rel), []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("writing %s: %w", rel, err)
		}
	}
	return dir, nil
}

const projectTemplate = `project_name: %s

pipelines_dir: %s
concurrency: 4

logging:
  level: info
  format: console

vars:
  env: dev

connections:
  warehouse:
    host: ${env_var("DFT_DB_HOST", "localhost")}
    port: 5432
    database: ${env_var("DFT_DB_NAME", "analytics")}
    user: ${env_var("DFT_DB_USER", "dft")}
    password: ${env_var("DFT_DB_PASSWORD", "")}
`

const pipelineTemplate = `pipeline_name: example
tags:
  - example

steps:
  - id: extract
    type: source
    source_type: csv
    config:
      file_path: data/example.csv

  - id: validate
    type: processor
    processor_type: validator
    depends_on:
      - extract
    config:
      row_count_min: 1
      required_columns:
        - id
        - name

  - id: save
    type: endpoint
    endpoint_type: csv
    depends_on:
      - validate
    config:
      file_path: output/example_${today()}.csv
`

const sampleData = `id,name
1,alice
2,bob
`

const envTemplate = `# Environment overrides picked up via ${env_var(...)} in config files.
DFT_DB_HOST=localhost
DFT_DB_NAME=analytics
DFT_DB_USER=dft
DFT_DB_PASSWORD=
`

const gitignoreTemplate = `.env
.dft/
output/
`
