// Package validator provides a data validation processor: row count
// bounds, required columns and not-null checks. Violations are reported
// together in one failure so a single run shows everything wrong.
package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexeiveselov92/dft-pipeline/internal/ctxlog"
	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

// Module implements plugin.Module for this package.
type Module struct{}

// Register wires the validator processor into the registry.
func (Module) Register(r *plugin.Registry) {
	r.RegisterProcessor("validator", newValidator)
}

type validator struct {
	rowCountMin     *int
	rowCountMax     *int
	requiredColumns []string
	notNullColumns  []string
}

func newValidator(cfg map[string]any) (plugin.Processor, error) {
	v := &validator{
		requiredColumns: plugin.ConfigStringSlice(cfg, "required_columns"),
		notNullColumns:  plugin.ConfigStringSlice(cfg, "not_null_columns"),
	}
	if n, ok := plugin.ConfigInt(cfg, "row_count_min"); ok {
		v.rowCountMin = &n
	}
	if n, ok := plugin.ConfigInt(cfg, "row_count_max"); ok {
		v.rowCountMax = &n
	}
	return v, nil
}

func (v *validator) Process(ctx context.Context, inputs map[string]*plugin.Artifact, _ plugin.RunContext) (*plugin.Artifact, error) {
	if len(inputs) != 1 {
		return nil, fmt.Errorf("validator expects exactly one upstream artifact, got %d", len(inputs))
	}
	var artifact *plugin.Artifact
	for _, a := range inputs {
		artifact = a
	}

	var violations []string

	if v.rowCountMin != nil && artifact.RowCount() < *v.rowCountMin {
		violations = append(violations, fmt.Sprintf("row count %d is below minimum %d", artifact.RowCount(), *v.rowCountMin))
	}
	if v.rowCountMax != nil && artifact.RowCount() > *v.rowCountMax {
		violations = append(violations, fmt.Sprintf("row count %d exceeds maximum %d", artifact.RowCount(), *v.rowCountMax))
	}

	for _, col := range v.requiredColumns {
		if !artifact.HasColumn(col) {
			violations = append(violations, fmt.Sprintf("missing required column %q", col))
		}
	}

	for _, col := range v.notNullColumns {
		if !artifact.HasColumn(col) {
			continue // already reported if also required
		}
		nulls := 0
		for _, row := range artifact.Rows {
			if v, ok := row[col]; !ok || v == nil || v == "" {
				nulls++
			}
		}
		if nulls > 0 {
			violations = append(violations, fmt.Sprintf("column %q contains %d null values", col, nulls))
		}
	}

	if len(violations) > 0 {
		return nil, fmt.Errorf("data validation failed: %s", strings.Join(violations, "; "))
	}

	artifact.AddMetadata("validation_passed", true)
	ctxlog.FromContext(ctx).Debug().Int("rows", artifact.RowCount()).Msg("Validation passed")
	return artifact, nil
}
