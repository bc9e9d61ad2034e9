package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"glide.dev/pkg/glide/internal/domain"
	m "glide.dev/pkg/glide/internal/model"
)

const (
	parsableDirFlagName    = "parsable-dir"
	rejectedDirFlagName    = "rejected-dir"
	parseSQLFlagName       = "parse-sql"
	ignoreFailuresFlagName = "ignore-failures"
	thresholdFlagName      = "threshold"
	tolerateSparseFlagName = "tolerate-sparse"
	archiverFlagName       = "archiver"
)

var (
	parsableDirFlag    string
	rejectedDirFlag    string
	parseSQLFlag       bool
	ignoreFailuresFlag bool
	thresholdFlag      int
	tolerateSparseFlag bool
	archiverFlag       string
)

const curateLongDescription = `Curate one batch directory.

Every file below <batch_dir> is classified and routed: tabular files with
enough e-mail addresses are linked into a bucket per delimiter, workbooks
are split into one CSV per sheet, and with --parse-sql the INSERT rows of
SQL dumps are extracted first. A batch with published buckets gets a
manifest and an archive and is moved to --parsable-dir; a halted batch is
moved to --rejected-dir. Without a destination the batch stays in place.`

func newCurateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curate <batch_dir>",
		Short: "Curate one batch directory",
		Long:  curateLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			wf, err := newWorkflow(cmd, cfg)
			if err != nil {
				return fmt.Errorf("set up workflow: %w", err)
			}

			batch, err := wf.Curate(ctx, domain.CurateArgs{
				Root:        m.Path(args[0]),
				ParsableDir: m.Path(viper.GetString(parsableDirKey)),
				RejectedDir: m.Path(viper.GetString(rejectedDirKey)),
				JournalDir:  viper.GetString(journalDirKey),
			})
			if err != nil {
				return fmt.Errorf("curate %s: %w", args[0], err)
			}

			slog.Info("Batch done", "run", batch.RunID, "outcome", batch.Outcome.String(), "location", batch.Location)

			return nil
		},
	}

	configureCurateFlags(cmd)

	return cmd
}

func configureCurateFlags(cmd *cobra.Command) {
	def := m.DefaultConfig()
	flags := cmd.Flags()

	flags.StringVarP(&parsableDirFlag, parsableDirFlagName, "p", "", "move parsable batches into this directory")
	bindFlagToConfig(flags.Lookup(parsableDirFlagName), parsableDirKey)

	flags.StringVarP(&rejectedDirFlag, rejectedDirFlagName, "j", "", "move rejected batches into this directory")
	bindFlagToConfig(flags.Lookup(rejectedDirFlagName), rejectedDirKey)

	flags.BoolVarP(&parseSQLFlag, parseSQLFlagName, "s", false, "extract INSERT rows of SQL dumps before routing")
	bindFlagToConfig(flags.Lookup(parseSQLFlagName), parseSQLKey)

	flags.BoolVar(&ignoreFailuresFlag, ignoreFailuresFlagName, false, "keep routing after a file halts the batch")
	bindFlagToConfig(flags.Lookup(ignoreFailuresFlagName), ignoreFailuresKey)

	flags.IntVarP(&thresholdFlag, thresholdFlagName, "t", def.Threshold, "e-mail addresses a file needs to be accepted, must be positive")
	bindFlagToConfig(flags.Lookup(thresholdFlagName), thresholdKey)

	flags.BoolVar(&tolerateSparseFlag, tolerateSparseFlagName, false, "reject sparse tabular files instead of halting the batch")
	bindFlagToConfig(flags.Lookup(tolerateSparseFlagName), tolerateSparseKey)

	flags.StringVar(&archiverFlag, archiverFlagName, string(def.ArchiveMode), "archiver to use: zip or command")
	bindFlagToConfig(flags.Lookup(archiverFlagName), archiveModeKey)
}

func init() {
	rootCmd.AddCommand(newCurateCmd())
}
