package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"glide.dev/pkg/glide/internal/domain"
	m "glide.dev/pkg/glide/internal/model"
)

var manifestInputFlag string
var manifestSearchDirFlag string

func newManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest <output_manifest>",
		Short: "Generate an output manifest for bucket directories",
		Long: `Generate the published manifest from an input descriptor and the
delimiter bucket directories found in the search directory. Without
--input the first *.manifest file of the search directory is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			wf, err := newWorkflow(cmd, cfg)
			if err != nil {
				return fmt.Errorf("set up workflow: %w", err)
			}

			out, err := wf.Manifest(cmd.Context(), domain.ManifestArgs{
				Input:     m.Path(manifestInputFlag),
				Output:    m.Path(args[0]),
				SearchDir: m.Path(manifestSearchDirFlag),
			})
			if err != nil {
				return err
			}

			cmd.Printf("Wrote %s with %d file entries\n", args[0], len(out.Files))

			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestInputFlag, "input", "i", "", "input descriptor (default: first *.manifest in the search directory)")
	cmd.Flags().StringVarP(&manifestSearchDirFlag, "search-dir", "s", ".", "directory holding the bucket directories")

	return cmd
}

func init() {
	rootCmd.AddCommand(newManifestCmd())
}
