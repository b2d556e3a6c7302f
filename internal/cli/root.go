// Package cli defines the dft command tree.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexeiveselov92/dft-pipeline/internal/app"
)

// ExitError carries a message and the process exit code main should use.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// globalFlags are shared by every subcommand that loads a project.
type globalFlags struct {
	projectDir string
	logLevel   string
	logFormat  string
	vars       []string
}

func (g *globalFlags) appOptions() (app.Options, error) {
	vars, err := parseVars(g.vars)
	if err != nil {
		return app.Options{}, err
	}
	return app.Options{
		Dir:       g.projectDir,
		Vars:      vars,
		LogLevel:  g.logLevel,
		LogFormat: g.logFormat,
	}, nil
}

// NewRootCommand builds the full dft command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "dft",
		Short: "Declarative data pipeline runner",
		Long: `dft runs declarative data pipelines: YAML files describe sources,
processors and endpoints wired into dependency graphs, and dft schedules
them with bounded parallelism.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.projectDir, "project-dir", ".", "project root directory")
	pf.StringVar(&flags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "override log format (console, json)")
	pf.StringSliceVar(&flags.vars, "vars", nil, "variable overrides as key=value pairs")

	root.AddCommand(
		newRunCommand(out, flags),
		newInitCommand(out),
		newDocsCommand(out, flags),
		newDebugCommand(out, flags),
	)
	return root
}

func loadApp(out io.Writer, flags *globalFlags) (*app.App, error) {
	opts, err := flags.appOptions()
	if err != nil {
		return nil, err
	}
	a, err := app.New(out, opts)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return a, nil
}
