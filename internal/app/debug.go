package app

import (
	"context"

	"github.com/alexeiveselov92/dft-pipeline/internal/plugin"
)

// Debug validates the loaded project beyond what construction already
// proved: it builds every step's connector and runs the connectivity
// self-check for connectors that support one. Returns true when every
// check passed. Nothing is executed.
func (a *App) Debug(ctx context.Context) bool {
	a.printf("Project %q: %d pipelines, all graphs valid\n\n", a.cfg.ProjectName, len(a.project.Pipelines()))

	ok := true
	for _, p := range a.project.Pipelines() {
		a.printf("pipeline %s\n", p.Name)
		for i := range p.Steps {
			step := &p.Steps[i]

			instance, err := a.registry.Build(step)
			if err != nil {
				a.printf("   ❌ %s (%s:%s): %s\n", step.ID, step.Kind, step.SubType, err)
				ok = false
				continue
			}

			tester, testable := instance.(plugin.ConnectionTester)
			if !testable {
				a.printf("   ✅ %s (%s:%s)\n", step.ID, step.Kind, step.SubType)
				continue
			}
			if err := tester.TestConnection(ctx); err != nil {
				a.printf("   ❌ %s (%s:%s): connection test failed: %s\n", step.ID, step.Kind, step.SubType, err)
				ok = false
				continue
			}
			a.printf("   ✅ %s (%s:%s): connection ok\n", step.ID, step.Kind, step.SubType)
		}
	}

	if ok {
		a.printf("\nAll checks passed\n")
	} else {
		a.printf("\nSome checks failed\n")
	}
	return ok
}
