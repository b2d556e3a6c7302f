// Package template implements substitution of ${...} expressions inside
// configuration values. Expressions use HCL template syntax evaluated
// against a small function table: env_var, var, today, now, run_date and
// date_add. The config loader applies the engine to every string value
// before the entity model is built, so connectors only ever see final
// values.
package template

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
)

const dateLayout = "2006-01-02"

// Engine renders templated configuration strings. It is constructed once
// per invocation with the merged variable bindings and the run timestamp,
// so date functions are stable across an entire run.
type Engine struct {
	evalCtx *hcl.EvalContext
}

// NewEngine builds an engine over the given variables. runAt anchors
// today(), run_date() and date_add() so every step of a run renders the
// same dates.
func NewEngine(vars map[string]any, runAt time.Time) *Engine {
	return &Engine{
		evalCtx: &hcl.EvalContext{
			Functions: map[string]function.Function{
				"env_var":  envVarFunc(),
				"var":      varFunc(vars),
				"today":    dateFunc(runAt, dateLayout),
				"run_date": dateFunc(runAt, dateLayout),
				"now":      dateFunc(runAt, time.RFC3339),
				"date_add": dateAddFunc(),
			},
		},
	}
}

// Render substitutes every ${...} expression in s. Strings without
// template markers pass through untouched.
func (e *Engine) Render(s string) (string, error) {
	if !strings.Contains(s, "${") {
		return s, nil
	}

	expr, diags := hclsyntax.ParseTemplate([]byte(s), "config", hcl.InitialPos)
	if diags.HasErrors() {
		return "", fmt.Errorf("invalid template %q: %s", s, diags.Error())
	}

	val, diags := expr.Value(e.evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("evaluating template %q: %s", s, diags.Error())
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("template %q did not produce a string: %w", s, err)
	}
	return str.AsString(), nil
}

// Apply renders every string value in a config mapping, recursing into
// nested maps and lists. The input is not mutated.
func (e *Engine) Apply(cfg map[string]any) (map[string]any, error) {
	out, err := e.applyValue(cfg)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func (e *Engine) applyValue(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return e.Render(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			rendered, err := e.applyValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = rendered
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			rendered, err := e.applyValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil
	default:
		return v, nil
	}
}

// envVarFunc looks up an environment variable, with an optional second
// argument as the fallback. A missing variable without fallback is an
// error so broken deployments surface at load time, not mid-run.
func envVarFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		VarParam: &function.Parameter{Name: "default", Type: cty.String},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			name := args[0].AsString()
			if v, ok := os.LookupEnv(name); ok {
				return cty.StringVal(v), nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return cty.NilVal, fmt.Errorf("environment variable %q is not set", name)
		},
	})
}

// varFunc resolves project/CLI variables.
func varFunc(vars map[string]any) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			name := args[0].AsString()
			v, ok := vars[name]
			if !ok {
				return cty.NilVal, fmt.Errorf("variable %q is not defined", name)
			}
			return cty.StringVal(fmt.Sprint(v)), nil
		},
	})
}

func dateFunc(at time.Time, layout string) function.Function {
	return function.New(&function.Spec{
		Type: function.StaticReturnType(cty.String),
		Impl: func(_ []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(at.Format(layout)), nil
		},
	})
}

// dateAddFunc shifts a YYYY-MM-DD date by a number of days.
func dateAddFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "date", Type: cty.String},
			{Name: "days", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			d, err := time.Parse(dateLayout, args[0].AsString())
			if err != nil {
				return cty.NilVal, fmt.Errorf("date_add: %w", err)
			}
			days, _ := args[1].AsBigFloat().Int64()
			return cty.StringVal(d.AddDate(0, 0, int(days)).Format(dateLayout)), nil
		},
	})
}
