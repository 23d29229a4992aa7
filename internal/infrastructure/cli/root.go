package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "x-search-mcp",
	Version: Version,
	Short:   "An MCP server for searching X posts",
	Long: `x-search-mcp is an MCP server that searches X (Twitter) posts.
It tries the Bird CLI first for structured results and falls back to the
xAI Live Search API when Bird is unavailable or unauthenticated.

Running without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.SetVersionTemplate("x-search-mcp {{.Version}} (" + Commit + ", " + Date + ")\n")
}
