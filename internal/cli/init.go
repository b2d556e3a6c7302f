package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexeiveselov92/dft-pipeline/internal/scaffold"
)

func newInitCommand(out io.Writer) *cobra.Command {
	var pipelinesDir string

	cmd := &cobra.Command{
		Use:   "init <project_name>",
		Short: "Create a new project skeleton",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir, err := scaffold.Create(".", args[0], pipelinesDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created project %s\n", dir)
			fmt.Fprintf(out, "Next: cd %s && dft run\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&pipelinesDir, "pipelines-dir", "pipelines", "directory for pipeline definitions")
	return cmd
}
