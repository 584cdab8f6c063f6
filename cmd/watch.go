package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storylist.dev/pkg/storylist/internal/domain"
)

var debounceFlag time.Duration

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Regenerate the registry module on changes",
		Long:  watchLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return workflow.Watch(ctx, domain.WatchArgs{
				GenerateArgs: generateArgsFromConfig(args),
				Debounce:     configDebounce(),
			})
		},
	}

	configureWatchFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func configureWatchFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&debounceFlag, debounceFlagName, viper.GetDuration(debounceConfigKey), "quiet period before regenerating after a change")
	bindFlagToConfig(cmd.Flags().Lookup(debounceFlagName), debounceConfigKey)
}
