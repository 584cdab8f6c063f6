package cmd

import (
	"github.com/spf13/cobra"
)

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [paths...]",
		Short: "Verify the generated module is up to date",
		Long:  checkLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			return workflow.Check(cmd.Context(), generateArgsFromConfig(args))
		},
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
