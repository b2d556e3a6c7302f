package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexeiveselov92/dft-pipeline/internal/graph"
	"github.com/alexeiveselov92/dft-pipeline/internal/model"
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
	"github.com/alexeiveselov92/dft-pipeline/internal/state"
)

// recorder captures what reached the endpoints, across goroutines.
type recorder struct {
	mu     sync.Mutex
	loads  map[string][]string // step id -> input keys
	inputs map[string]*plugin.Artifact
}

func newRecorder() *recorder {
	return &recorder{loads: make(map[string][]string), inputs: make(map[string]*plugin.Artifact)}
}

type stubSource struct{ cfg map[string]any }

func (s stubSource) Extract(_ context.Context, _ plugin.RunContext) (*plugin.Artifact, error) {
	if _, boom := s.cfg["fail"]; boom {
		return nil, errors.New("extract blew up")
	}
	rows := []map[string]any{{"id": 1}, {"id": 2}}
	return plugin.NewArtifact([]string{"id"}, rows, "stub"), nil
}

type stubProcessor struct{ cfg map[string]any }

func (p stubProcessor) Process(_ context.Context, inputs map[string]*plugin.Artifact, _ plugin.RunContext) (*plugin.Artifact, error) {
	if _, boom := p.cfg["panics"]; boom {
		panic("processor exploded")
	}
	var total int
	for _, a := range inputs {
		total += a.RowCount()
	}
	out := plugin.NewArtifact([]string{"count"}, []map[string]any{{"count": total}}, "stub")
	return out, nil
}

type stubEndpoint struct {
	name string
	rec  *recorder
}

func (e stubEndpoint) Load(_ context.Context, inputs map[string]*plugin.Artifact, _ plugin.RunContext) error {
	e.rec.mu.Lock()
	defer e.rec.mu.Unlock()
	for key, a := range inputs {
		e.rec.loads[e.name] = append(e.rec.loads[e.name], key)
		e.rec.inputs[e.name+"/"+key] = a
	}
	return nil
}

func testRegistry(rec *recorder) *plugin.Registry {
	r := plugin.NewRegistry()
	r.RegisterSource("stub", func(cfg map[string]any) (plugin.Source, error) {
		return stubSource{cfg: cfg}, nil
	})
	r.RegisterProcessor("stub", func(cfg map[string]any) (plugin.Processor, error) {
		return stubProcessor{cfg: cfg}, nil
	})
	r.RegisterEndpoint("stub", func(cfg map[string]any) (plugin.Endpoint, error) {
		name, _ := plugin.ConfigString(cfg, "name")
		return stubEndpoint{name: name, rec: rec}, nil
	})
	return r
}

func buildEngine(t *testing.T, pipelines []model.Pipeline, rec *recorder, opts Options) (*Engine, map[string]struct{}) {
	t.Helper()
	project, err := model.NewProject("test", pipelines)
	require.NoError(t, err)
	g, err := graph.FromPipelines(project.Pipelines())
	require.NoError(t, err)

	e, err := New(project, g, testRegistry(rec), opts)
	require.NoError(t, err)

	targets := make(map[string]struct{})
	for _, name := range project.Names() {
		targets[name] = struct{}{}
	}
	return e, targets
}

func steps(src, proc bool, endpointName string) []model.Step {
	var out []model.Step
	if src {
		out = append(out, model.Step{ID: "extract", Kind: model.KindSource, SubType: "stub"})
	}
	if proc {
		out = append(out, model.Step{ID: "process", Kind: model.KindProcessor, SubType: "stub", DependsOn: []string{"extract"}})
	}
	out = append(out, model.Step{
		ID: "save", Kind: model.KindEndpoint, SubType: "stub",
		DependsOn: []string{"process"},
		Config:    map[string]any{"name": endpointName},
	})
	return out
}

func TestRunSuccess(t *testing.T) {
	rec := newRecorder()
	e, targets := buildEngine(t, []model.Pipeline{
		{Name: "events", Steps: steps(true, true, "events_sink")},
	}, rec, Options{Concurrency: 2})

	result, err := e.Run(context.Background(), targets)
	require.NoError(t, err)

	assert.True(t, result.Success())
	pr, ok := result.Pipeline("events")
	require.True(t, ok)
	assert.Equal(t, StatusSucceeded, pr.Status)
	require.Len(t, pr.Steps, 3)
	for _, st := range pr.Steps {
		assert.Equal(t, StatusSucceeded, st.Status)
	}

	// The endpoint received the processor's artifact keyed by its step id.
	assert.Equal(t, []string{"process"}, rec.loads["events_sink"])
	art := rec.inputs["events_sink/process"]
	require.NotNil(t, art)
	assert.Equal(t, 1, art.RowCount())
	assert.Equal(t, 2, art.Rows[0]["count"])
}

func TestStepFailurePropagation(t *testing.T) {
	rec := newRecorder()
	pipelines := []model.Pipeline{{
		Name: "events",
		Steps: []model.Step{
			{ID: "extract", Kind: model.KindSource, SubType: "stub", Config: map[string]any{"fail": true}},
			{ID: "process", Kind: model.KindProcessor, SubType: "stub", DependsOn: []string{"extract"}},
			{ID: "save", Kind: model.KindEndpoint, SubType: "stub", DependsOn: []string{"process"}},
			{ID: "independent", Kind: model.KindSource, SubType: "stub"},
		},
	}}

	e, targets := buildEngine(t, pipelines, rec, Options{Concurrency: 1})
	result, err := e.Run(context.Background(), targets)
	require.NoError(t, err)

	assert.False(t, result.Success())
	pr, _ := result.Pipeline("events")
	require.NotNil(t, pr)
	assert.Equal(t, StatusFailed, pr.Status)
	assert.Contains(t, pr.Error, "extract blew up")

	byID := make(map[string]StepResult)
	for _, st := range pr.Steps {
		byID[st.ID] = st
	}
	assert.Equal(t, StatusFailed, byID["extract"].Status)
	assert.Equal(t, StatusSkipped, byID["process"].Status)
	assert.Equal(t, StatusSkipped, byID["save"].Status)
	// No dependency relation to the failure: still runs.
	assert.Equal(t, StatusSucceeded, byID["independent"].Status)
}

func TestPipelineFailurePropagation(t *testing.T) {
	rec := newRecorder()
	pipelines := []model.Pipeline{
		{Name: "raw", Steps: []model.Step{
			{ID: "extract", Kind: model.KindSource, SubType: "stub", Config: map[string]any{"fail": true}},
		}},
		{Name: "staging", DependsOn: []string{"raw"}, Steps: steps(true, true, "staging_sink")},
		{Name: "marts", DependsOn: []string{"staging"}, Steps: steps(true, true, "marts_sink")},
		{Name: "unrelated", Steps: steps(true, true, "unrelated_sink")},
	}

	for _, workers := range []int{1, 4} {
		rec = newRecorder()
		e, targets := buildEngine(t, pipelines, rec, Options{Concurrency: workers})
		result, err := e.Run(context.Background(), targets)
		require.NoError(t, err)

		assert.False(t, result.Success())

		raw, _ := result.Pipeline("raw")
		staging, _ := result.Pipeline("staging")
		marts, _ := result.Pipeline("marts")
		unrelated, _ := result.Pipeline("unrelated")

		assert.Equal(t, StatusFailed, raw.Status)
		assert.Equal(t, StatusSkipped, staging.Status)
		assert.Contains(t, staging.Error, `"raw" failed`)
		assert.Equal(t, StatusSkipped, marts.Status)
		assert.Equal(t, StatusSucceeded, unrelated.Status)

		// Skipped pipelines never touched their endpoints.
		assert.Empty(t, rec.loads["staging_sink"])
		assert.Empty(t, rec.loads["marts_sink"])
		assert.Equal(t, []string{"process"}, rec.loads["unrelated_sink"])
	}
}

func TestPanicBecomesStepFailure(t *testing.T) {
	rec := newRecorder()
	pipelines := []model.Pipeline{{
		Name: "events",
		Steps: []model.Step{
			{ID: "extract", Kind: model.KindSource, SubType: "stub"},
			{ID: "process", Kind: model.KindProcessor, SubType: "stub", DependsOn: []string{"extract"}, Config: map[string]any{"panics": true}},
		},
	}}

	e, targets := buildEngine(t, pipelines, rec, Options{})
	result, err := e.Run(context.Background(), targets)
	require.NoError(t, err)

	pr, _ := result.Pipeline("events")
	require.NotNil(t, pr)
	assert.Equal(t, StatusFailed, pr.Status)
	assert.Contains(t, pr.Error, "panicked")
}

func TestDeterministicPlan(t *testing.T) {
	rec := newRecorder()
	pipelines := []model.Pipeline{
		{Name: "c", Steps: steps(true, false, "c_sink")[0:1]},
		{Name: "a", Steps: steps(true, false, "a_sink")[0:1]},
		{Name: "b", DependsOn: []string{"a"}, Steps: steps(true, false, "b_sink")[0:1]},
	}

	e, targets := buildEngine(t, pipelines, rec, Options{Concurrency: 1})

	first, err := e.Run(context.Background(), targets)
	require.NoError(t, err)
	second, err := e.Run(context.Background(), targets)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a", "b"}, first.Plan())
	assert.Equal(t, first.Plan(), second.Plan())
}

func TestEmptyTargetSetIsNoOp(t *testing.T) {
	rec := newRecorder()
	e, _ := buildEngine(t, []model.Pipeline{
		{Name: "events", Steps: steps(true, true, "sink")},
	}, rec, Options{})

	result, err := e.Run(context.Background(), map[string]struct{}{})
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Empty(t, result.Pipelines())
}

func TestCancelledRunSkips(t *testing.T) {
	rec := newRecorder()
	e, targets := buildEngine(t, []model.Pipeline{
		{Name: "events", Steps: steps(true, true, "sink")},
	}, rec, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.Run(ctx, targets)
	require.NoError(t, err)
	assert.False(t, result.Success())
	pr, _ := result.Pipeline("events")
	require.NotNil(t, pr)
	assert.Equal(t, StatusSkipped, pr.Status)
	assert.Contains(t, pr.Error, "cancelled")
}

func TestStatePassThrough(t *testing.T) {
	store := state.NewMemoryStore()
	require.NoError(t, store.Save("events", map[string]any{"cursor": "42"}))

	var priorCursor any
	r := plugin.NewRegistry()
	r.RegisterSource("probe", func(cfg map[string]any) (plugin.Source, error) {
		return sourceFunc(func(_ context.Context, rc plugin.RunContext) (*plugin.Artifact, error) {
			priorCursor = rc.State["cursor"]
			rc.State["cursor"] = "43"
			return plugin.NewArtifact(nil, nil, "probe"), nil
		}), nil
	})

	project, err := model.NewProject("test", []model.Pipeline{
		{Name: "events", Steps: []model.Step{{ID: "s", Kind: model.KindSource, SubType: "probe"}}},
	})
	require.NoError(t, err)
	g, err := graph.FromPipelines(project.Pipelines())
	require.NoError(t, err)

	t.Run("state loads and saves", func(t *testing.T) {
		e, err := New(project, g, r, Options{Store: store})
		require.NoError(t, err)
		_, err = e.Run(context.Background(), map[string]struct{}{"events": {}})
		require.NoError(t, err)

		assert.Equal(t, "42", priorCursor)
		saved, err := store.Load("events")
		require.NoError(t, err)
		assert.Equal(t, "43", saved["cursor"])
	})

	t.Run("full refresh discards prior state", func(t *testing.T) {
		e, err := New(project, g, r, Options{Store: store, FullRefresh: true})
		require.NoError(t, err)
		_, err = e.Run(context.Background(), map[string]struct{}{"events": {}})
		require.NoError(t, err)
		assert.Nil(t, priorCursor)
	})
}

// sourceFunc adapts a function to the Source interface.
type sourceFunc func(ctx context.Context, rc plugin.RunContext) (*plugin.Artifact, error)

func (f sourceFunc) Extract(ctx context.Context, rc plugin.RunContext) (*plugin.Artifact, error) {
	return f(ctx, rc)
}
