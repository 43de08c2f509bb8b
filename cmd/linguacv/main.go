package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"linguacv/internal/config"
	"linguacv/internal/logger"
)

// cfg is loaded once by the root command before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "linguacv",
	Short: "Live preview and PDF export for voice-built résumés",
	Long: `linguacv polls the résumé backend for the latest snapshot produced by a
voice session, serves a live preview of it, and exports it to PDF.

Examples:
  linguacv serve                      # start the preview server
  linguacv preview                    # print the current résumé sections
  linguacv export -o cv.pdf           # export the current résumé
  linguacv export --snapshot s.json   # export a saved snapshot
  linguacv reset                      # clear the résumé on the backend`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
			c.BackendURL = backend
			if err := c.Validate(); err != nil {
				return err
			}
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			c.Debug = true
		}
		if err := logger.Initialize(c.LogJSON, c.Debug); err != nil {
			return errors.Wrap(err, "initialize logger")
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("backend", "", "Backend base URL (overrides BACKEND_URL)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(resetCmd)
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
