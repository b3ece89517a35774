package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/mosen/patchgen/internal/scanner"
	"github.com/mosen/patchgen/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command
func NewScanCmd() *cobra.Command {
	var withChecksums bool

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Find installer packages below a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := scanner.NewFileSystemScanner()
			installers, err := sc.Scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if withChecksums {
				fmt.Fprintln(w, "PATH\tKIND\tSIZE\tSHA256")
			} else {
				fmt.Fprintln(w, "PATH\tKIND\tSIZE")
			}

			for _, installer := range installers {
				if withChecksums && installer.Kind == scanner.KindFlatPackage {
					checksums, err := utils.CalculateChecksums(installer.Path)
					if err != nil {
						logrus.Warnf("Failed to checksum %s: %v", installer.Path, err)
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", installer.Path, installer.Kind, checksums.Size, checksums.SHA256)
					continue
				}
				if withChecksums {
					fmt.Fprintf(w, "%s\t%s\t%d\t-\n", installer.Path, installer.Kind, installer.Size)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", installer.Path, installer.Kind, installer.Size)
			}

			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&withChecksums, "checksums", false, "Calculate a SHA256 checksum for each flat package")

	return cmd
}
