// Package cmd implements the gateway CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "unified-ai",
	Short:         "Gateway for the unified AI support dashboard",
	Long:          "unified-ai proxies chat and analytics requests to the marketing-automation platform backend and serves dashboard view models.",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Running without a subcommand serves, matching container entrypoints.
		return runServe(cmd, args)
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
