package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func newDebugCommand(out io.Writer, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: "Validate the project and test connector connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(out, flags)
			if err != nil {
				return err
			}
			if !a.Debug(cmd.Context()) {
				return &ExitError{Code: 1, Message: "some checks failed"}
			}
			return nil
		},
	}
}
