package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexeiveselov92/dft-pipeline/internal/model"
	"github.com/alexeiveselov92/dft-pipeline/internal/template"
)

// pipelineFile mirrors the on-disk YAML shape of one pipeline definition.
type pipelineFile struct {
	PipelineName string     `yaml:"pipeline_name"`
	Tags         []string   `yaml:"tags"`
	DependsOn    []string   `yaml:"depends_on"`
	Steps        []stepFile `yaml:"steps"`
}

type stepFile struct {
	ID            string         `yaml:"id"`
	Type          string         `yaml:"type"`
	SourceType    string         `yaml:"source_type"`
	ProcessorType string         `yaml:"processor_type"`
	EndpointType  string         `yaml:"endpoint_type"`
	Connection    string         `yaml:"connection"`
	DependsOn     []string       `yaml:"depends_on"`
	Config        map[string]any `yaml:"config"`
}

// LoadPipelines discovers and parses every pipeline file under the
// project's pipelines directory, applying template substitution and
// connection merging to step configs. Files are processed in sorted path
// order, which fixes the declaration order used for scheduling
// tie-breaks.
func LoadPipelines(cfg *ProjectConfig, engine *template.Engine) ([]model.Pipeline, error) {
	root := filepath.Join(cfg.Dir, cfg.PipelinesDir)
	paths, err := findPipelineFiles(root)
	if err != nil {
		return nil, fmt.Errorf("discovering pipelines in %s: %w", root, err)
	}

	pipelines := make([]model.Pipeline, 0, len(paths))
	for _, path := range paths {
		p, err := loadPipelineFile(path, cfg, engine)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, *p)
	}
	return pipelines, nil
}

func loadPipelineFile(path string, cfg *ProjectConfig, engine *template.Engine) (*model.Pipeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var pf pipelineFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if pf.PipelineName == "" {
		return nil, fmt.Errorf("%s: pipeline_name is required", path)
	}

	p := &model.Pipeline{
		Name:      pf.PipelineName,
		Tags:      pf.Tags,
		DependsOn: pf.DependsOn,
		Steps:     make([]model.Step, 0, len(pf.Steps)),
	}

	for _, sf := range pf.Steps {
		step, err := buildStep(sf, cfg, engine)
		if err != nil {
			return nil, fmt.Errorf("%s: pipeline %q: %w", path, pf.PipelineName, err)
		}
		p.Steps = append(p.Steps, *step)
	}
	return p, nil
}

func buildStep(sf stepFile, cfg *ProjectConfig, engine *template.Engine) (*model.Step, error) {
	kind := model.StepKind(sf.Type)

	var subType string
	switch kind {
	case model.KindSource:
		subType = sf.SourceType
	case model.KindProcessor:
		subType = sf.ProcessorType
	case model.KindEndpoint:
		subType = sf.EndpointType
	}

	stepCfg := make(map[string]any, len(sf.Config))

	// A named connection seeds the config; step-level values win.
	if sf.Connection != "" {
		conn, ok := cfg.Connections[sf.Connection]
		if !ok {
			return nil, fmt.Errorf("step %q references unknown connection %q", sf.ID, sf.Connection)
		}
		for k, v := range conn {
			stepCfg[k] = v
		}
	}
	for k, v := range sf.Config {
		stepCfg[k] = v
	}

	rendered, err := engine.Apply(stepCfg)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", sf.ID, err)
	}

	return &model.Step{
		ID:        sf.ID,
		Kind:      kind,
		SubType:   subType,
		DependsOn: sf.DependsOn,
		Config:    rendered,
	}, nil
}

// findPipelineFiles recursively collects *.yml and *.yaml files under
// root, sorted for deterministic declaration order.
func findPipelineFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".yml") || strings.HasSuffix(d.Name(), ".yaml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
