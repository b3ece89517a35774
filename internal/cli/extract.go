package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/mosen/patchgen/internal/models"
	"github.com/mosen/patchgen/internal/receipt"
	"github.com/mosen/patchgen/internal/scanner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewExtractCmd creates the extract command
func NewExtractCmd() *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:   "extract <installer>",
		Short: "Extract component records from an installer package",
		Long: `Lists the installed-component receipts of a flat or bundle-style
installer package: one record per component with its package id, version
and installed size.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			kind, err := scanner.DetectInstallerKind(path)
			if err != nil {
				return &models.PatchGenError{Type: models.ErrFileOp, Installer: path, Err: err}
			}
			if kind == scanner.KindUnknown {
				return &models.PatchGenError{
					Type:      models.ErrInvalidConfig,
					Installer: path,
					Err:       fmt.Errorf("not a recognized installer package"),
				}
			}

			logrus.Infof("Examining %s package %s", kind, path)

			records, err := receipt.ExtractComponentRecords(path)
			if err != nil {
				return err
			}

			if asTable {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "PACKAGE ID\tVERSION\tSIZE (KB)")
				for _, record := range records {
					fmt.Fprintf(w, "%s\t%s\t%d\n", record.PackageID, record.Version, record.InstalledSizeKB)
				}
				return w.Flush()
			}

			out, err := json.MarshalIndent(records, "", "    ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asTable, "table", false, "Print records as a table instead of JSON")

	return cmd
}
