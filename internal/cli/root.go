package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "patchgen",
		Short: "Extract component receipts from macOS installer packages",
		Long: `Patchgen reads macOS installer packages (flat .pkg/.mpkg archives and
bundle-style package directories), extracts the installed-component
receipts they would leave behind, and generates JAMF patch definitions
from them.

Commands:
  - extract:  list the component records of one installer package
  - patchdef: generate a patch definition document for one package
  - scan:     find installer packages below a directory`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(NewExtractCmd())
	rootCmd.AddCommand(NewPatchDefCmd())
	rootCmd.AddCommand(NewScanCmd())

	return rootCmd
}
