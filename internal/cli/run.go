package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/alexeiveselov92/dft-pipeline/internal/app"
)

func newRunCommand(out io.Writer, flags *globalFlags) *cobra.Command {
	var opts app.RunOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute pipelines",
		Long: `Execute the selected pipelines in dependency order. With no
--select flag every pipeline in the project runs. Selection expressions
accept names, tag:<tag> clauses and +prefix/+suffix closure operators,
joined by commas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(out, flags)
			if err != nil {
				return err
			}
			result, err := a.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if !result.Success() {
				return &ExitError{Code: 1, Message: "run finished with failures"}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Select, "select", "s", "", `selection expression, e.g. "+marts" or "tag:nightly"`)
	cmd.Flags().StringVarP(&opts.Exclude, "exclude", "e", "", "selection expression removed from the target set")
	cmd.Flags().BoolVar(&opts.FullRefresh, "full-refresh", false, "ignore saved incremental state for this run")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "max pipelines in flight (default from dft_project.yml)")
	return cmd
}
