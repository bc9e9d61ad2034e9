// Package cmd provides the root command and CLI setup for glide.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"glide.dev/pkg/glide/internal/adapter"
	"glide.dev/pkg/glide/internal/controller"
	"glide.dev/pkg/glide/internal/domain"
	m "glide.dev/pkg/glide/internal/model"
)

const (
	logFileFlagName = "log-file"
	verboseFlagName = "verbose"
	noTUIFlagName   = "no-tui"
)

var logFileFlag string
var verboseFlag bool

// noTUIFlag forces plain output even on a terminal.
var noTUIFlag bool

// newWorkflow wires the production adapters for cfg. Tests swap it for a mock.
var newWorkflow = func(cmd *cobra.Command, cfg m.Config) (domain.Workflow, error) {
	archiver, err := adapter.NewArchiver(cfg)
	if err != nil {
		return nil, err
	}

	return domain.NewWorkflow(
		cfg,
		adapter.NewLocalSourceFSAdapter(),
		adapter.NewLocalTextExtractor(),
		adapter.NewExcelSheetReader(),
		adapter.NewYAMLManifestStore(),
		archiver,
		newUI(cmd),
	), nil
}

// newUI picks the interactive TUI on a terminal and plain output otherwise.
func newUI(cmd *cobra.Command) controller.UI {
	if viper.GetBool(tuiKey) && !noTUIFlag && controller.IsTTY(cmd.OutOrStdout()) {
		return controller.NewTUI(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	return controller.NewSimpleUI(cmd, viper.GetBool(logVerboseKey))
}

const rootLongDescription = `Glide curates batches of leaked data files. Every file of a batch
directory is classified, gated on its e-mail density and sorted into
delimiter buckets; spreadsheets and SQL dumps are flattened to CSV first.
Publishable batches get a manifest and a zip archive, then each batch is
moved to the parsable or rejected location.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "glide",
		Short:        "Batch curation pipeline for leaked data dumps",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, defaultLogFilename, "rotating log file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "debug logging and one line per routed file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().BoolVar(&noTUIFlag, noTUIFlagName, false, "plain output even on a terminal")
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
		os.Exit(1)
	}
}
