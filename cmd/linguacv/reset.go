package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"linguacv/pkg/backend"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the résumé stored on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := backend.NewClient(cfg.BackendURL, cfg.FetchTimeout()).Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Resume reset.")
		return nil
	},
}
