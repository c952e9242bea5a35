// Package cmd holds the CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "Sift - conversational search agent backend",
	Long: `Sift is a conversational agent backend. It answers questions through a
language model that can search the web, streams responses over SSE, and
optionally serves a Telegram bot alongside the HTTP API.

Running sift with no arguments starts the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
