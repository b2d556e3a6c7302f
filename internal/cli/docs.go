package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexeiveselov92/dft-pipeline/internal/docs"
)

func newDocsCommand(out io.Writer, flags *globalFlags) *cobra.Command {
	var (
		serve bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate project documentation",
		Long:  "Render a static HTML overview of every pipeline and step, optionally serving it over HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := loadApp(out, flags)
			if err != nil {
				return err
			}
			path, err := docs.Generate(a.Project(), a.Graph(), a.DocsDir())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Documentation written to %s\n", path)

			if !serve {
				return nil
			}
			addr := fmt.Sprintf("localhost:%d", port)
			fmt.Fprintf(out, "Serving docs on http://%s\n", addr)
			return docs.Serve(a.DocsDir(), addr)
		},
	}

	cmd.Flags().BoolVar(&serve, "serve", false, "serve the generated docs over HTTP")
	cmd.Flags().IntVar(&port, "port", 8080, "port for --serve")
	return cmd
}
