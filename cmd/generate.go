package cmd

import (
	"github.com/spf13/cobra"
)

// generateCmd represents the generate command.
var generateCmd = newGenerateCmd()

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [paths...]",
		Short: "Generate the story registry module",
		Long:  generateLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Generate(cmd.Context(), generateArgsFromConfig(args))
		},
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
