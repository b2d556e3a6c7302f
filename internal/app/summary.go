package app

import (
	"time"

	"github.com/alexeiveselov92/dft-pipeline/internal/engine"
)

func statusIcon(s engine.Status) string {
	switch s {
	case engine.StatusSucceeded:
		return "✅"
	case engine.StatusFailed:
		return "❌"
	case engine.StatusSkipped:
		return "⏭️"
	}
	return "?"
}

// printSummary writes the per-pipeline / per-step report to the
// command's output. Error details are shown for everything that failed
// or was skipped, so a single run reports the complete picture.
func (a *App) printSummary(result *engine.RunResult) {
	a.printf("\nRun %s finished in %s\n\n", result.RunID, result.Duration.Round(time.Millisecond))

	for _, pr := range result.Pipelines() {
		a.printf("%s %s (%s)\n", statusIcon(pr.Status), pr.Name, pr.Duration.Round(time.Millisecond))
		if pr.Error != "" {
			a.printf("   reason: %s\n", pr.Error)
		}
		for _, st := range pr.Steps {
			a.printf("   %s %s", statusIcon(st.Status), st.ID)
			if st.Status == engine.StatusFailed && st.Error != "" {
				a.printf(" — %s", st.Error)
			}
			a.printf("\n")
		}
	}

	succeeded, failed, skipped := result.Counts()
	a.printf("\n%d pipelines: %d succeeded, %d failed, %d skipped\n",
		succeeded+failed+skipped, succeeded, failed, skipped)
}
