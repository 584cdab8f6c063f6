// Package cmd provides the root command and CLI setup for storylist.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"storylist.dev/pkg/storylist/internal/adapter"
	"storylist.dev/pkg/storylist/internal/controller"
	"storylist.dev/pkg/storylist/internal/domain"
	m "storylist.dev/pkg/storylist/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var scriptAdapter adapter.ScriptFileAdapter
var manifestStore adapter.ManifestStore
var sourceWatcher adapter.SourceWatcher
var emitter domain.Emitter
var workflow domain.Workflow
var ui controller.UI

// outputFlag is a root-level flag naming the generated module.
var outputFlag string

// excludePatterns is a root-level flag that filters entries for every command.
var excludePatterns []string

var storySuffixFlag string
var appSrcDirFlag string
var strictFlag bool
var hmrFlag bool
var manifestFlag string
var verboseFlag bool
var logFileFlag string

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	scriptAdapter = adapter.NewLocalScriptFileAdapter()
	manifestStore = adapter.NewYAMLManifestStore(fsAdapter)
	sourceWatcher = adapter.NewLocalSourceWatcher(fsAdapter)
	emitter = domain.NewEmitter()
	workflow = domain.NewWorkflow(
		fsAdapter,
		scriptAdapter,
		manifestStore,
		sourceWatcher,
		ui,
		emitter,
	)
}

const pathArgsHelp = `Paths may be module files or directories:
  - widgets/button.stories.tsx   use the file as given
  - src                          walk src for *.stories.* modules
  - (none)                       walk the current directory`

const rootLongDescription = `Storylist scans JavaScript and TypeScript modules for exported stories
and generates a module that registers each story behind a lazy loader.

` + pathArgsHelp

const generateLongDescription = `Generate the story registry module for the given paths.

The module is written to stdout unless --output names a file.

` + pathArgsHelp

const listLongDescription = `List the stories discovered in the given paths.

` + pathArgsHelp

const checkLongDescription = `Regenerate the registry in memory and compare it with --output.
Exits non-zero and prints a diff when the file is stale.

` + pathArgsHelp

const watchLongDescription = `Generate the registry, then regenerate it whenever a module changes
and report whether a running dev server can hot-swap the stories.

` + pathArgsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storylist",
		Short: "Story registry generator",
		Long:  rootLongDescription,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))

			if configErr != nil {
				slog.Error("invalid config file", "error", configErr)
				return configErr
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&outputFlag, outputFlagName, "o", viper.GetString(outputFlagName), "write the generated module to this file (default: stdout)")
	bindFlagToConfig(flags.Lookup(outputFlagName), outputFlagName)

	flags.StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(flags.Lookup(excludeFlagName), excludeConfigKey)

	flags.StringVar(&storySuffixFlag, storySuffixFlagName, viper.GetString(storySuffixConfigKey), "marker stripped from file names and required when walking directories")
	bindFlagToConfig(flags.Lookup(storySuffixFlagName), storySuffixConfigKey)

	flags.StringVar(&appSrcDirFlag, appSrcDirFlagName, viper.GetString(appSrcDirConfigKey), "directory the generated module is imported from")
	bindFlagToConfig(flags.Lookup(appSrcDirFlagName), appSrcDirConfigKey)

	flags.BoolVar(&strictFlag, strictFlagName, viper.GetBool(strictConfigKey), "fail when two stories share an id")
	bindFlagToConfig(flags.Lookup(strictFlagName), strictConfigKey)

	flags.BoolVar(&hmrFlag, hmrFlagName, viper.GetBool(hmrConfigKey), "append the hot-reload acceptance block")
	bindFlagToConfig(flags.Lookup(hmrFlagName), hmrConfigKey)

	flags.StringVar(&manifestFlag, manifestFlagName, viper.GetString(manifestConfigKey), "also write a YAML manifest of the stories to this file")
	bindFlagToConfig(flags.Lookup(manifestFlagName), manifestConfigKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var parseErr *adapter.ParseError
		if errors.As(err, &parseErr) {
			fmt.Fprintln(os.Stderr, parseErr.Report())
		}

		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// scanArgsFromConfig collects the entry selection shared by every command.
func scanArgsFromConfig(args []string) domain.ScanArgs {
	return domain.ScanArgs{
		Paths:       parsePaths(args),
		Exclude:     viper.GetStringSlice(excludeConfigKey),
		StorySuffix: viper.GetString(storySuffixConfigKey),
		AppSrcDir:   m.Path(viper.GetString(appSrcDirConfigKey)),
		Strict:      viper.GetBool(strictConfigKey),
	}
}

// generateArgsFromConfig adds the output selection to scanArgsFromConfig.
func generateArgsFromConfig(args []string) domain.GenerateArgs {
	return domain.GenerateArgs{
		ScanArgs:  scanArgsFromConfig(args),
		Output:    m.Path(viper.GetString(outputFlagName)),
		Manifest:  m.Path(viper.GetString(manifestConfigKey)),
		HotReload: viper.GetBool(hmrConfigKey),
	}
}
