package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sprocc",
	Short: "MySQL stored-routine compiler",
	Long: `sprocc compiles a directory of annotated stored-routine sources into a
MySQL database and records, per routine, the calling contract a wrapper
generator needs: parameter shapes, semantic types, result designation and
documentation.

Routines are recompiled only when their source, placeholder values,
session settings or catalog state changed; everything else is left alone.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or placeholders
  11 - Database connection failed
  12 - User denied rebuild approval
  13 - One or more routines failed to compile
  14 - Source directory missing or empty`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for sprocc")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
