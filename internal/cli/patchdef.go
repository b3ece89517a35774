package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mosen/patchgen/internal/models"
	"github.com/mosen/patchgen/internal/patchdef"
	"github.com/mosen/patchgen/internal/receipt"
	"github.com/mosen/patchgen/internal/restart"
	"github.com/mosen/patchgen/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewPatchDefCmd creates the patchdef command
func NewPatchDefCmd() *cobra.Command {
	var overrides patchdef.Overrides
	var prodName, version, output string
	var queryRestart bool

	cmd := &cobra.Command{
		Use:   "patchdef <installer>",
		Short: "Generate a patch definition from an installer package",
		Long: `Extracts the component receipts of an installer package and generates a
JAMF patch-title definition in JSON. The product name and version default
to values derived from the package filename; supplied flags override any
generated field.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			if prodName == "" {
				base := filepath.Base(path)
				prodName = strings.TrimSuffix(base, filepath.Ext(base))
			}
			if prodName == "" {
				return &models.PatchGenError{
					Type:      models.ErrInvalidConfig,
					Installer: path,
					Err:       fmt.Errorf("product name is required"),
				}
			}

			logrus.Infof("Generating patch definition for %s %s", prodName, version)

			records, err := receipt.ExtractComponentRecords(path)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				logrus.Warnf("No component receipts found in %s", path)
			}

			restartAction := ""
			if queryRestart {
				restartAction = restart.Query(cmd.Context(), path)
			}

			def := patchdef.Build(prodName, version, records, restartAction, overrides)

			out, err := def.JSON()
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			if err := utils.WriteFile(output, out, 0644); err != nil {
				return &models.PatchGenError{Type: models.ErrFileOp, Installer: path, Err: err}
			}
			logrus.Infof("Wrote patch definition to %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&prodName, "name", "n", "", "Product name (defaults to the package filename)")
	cmd.Flags().StringVar(&version, "version", "0.0.0.0", "Product version")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the definition to a file instead of stdout")
	cmd.Flags().BoolVar(&queryRestart, "query-restart", false, "Query the package's RestartAction (macOS only)")

	// Override flags mirror the patchinfo keys
	cmd.Flags().StringVar(&overrides.ID, "id", "", "Override the definition id")
	cmd.Flags().StringVar(&overrides.Publisher, "publisher", "", "Override the publisher name")
	cmd.Flags().StringVar(&overrides.AppName, "app-name", "", "Override the application name")
	cmd.Flags().StringVar(&overrides.BundleID, "bundle-id", "", "Override the application bundle id")
	cmd.Flags().StringVar(&overrides.MinimumOperatingSystem, "minimum-os", "", "Override the minimum operating system version")

	return cmd
}
