package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/outliyr/x-search-mcp/internal/infrastructure/probe"
)

var (
	healthURL     string
	healthMode    string
	healthTimeout time.Duration
	healthToken   string
)

var healthOK = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var healthFail = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe a running server and exit non-zero when it is unhealthy",
	Long: `Probe a running server. The container HEALTHCHECK runs this in rpc
mode, which sends a JSON-RPC ping to /mcp; http mode only checks /health.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := probe.ParseMode(healthMode)
		if err != nil {
			return err
		}
		token := healthToken
		if token == "" {
			token = os.Getenv("MCP_AUTH_TOKEN")
		}
		p := probe.New(healthURL)
		p.Token = token
		p.Timeout = healthTimeout

		if err := p.Check(cmd.Context(), mode); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), healthFail.Render("FAIL"), err)
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), healthOK.Render("OK"))
		return nil
	},
}

func init() {
	healthcheckCmd.Flags().StringVar(&healthURL, "url", "http://localhost:3000", "Server base URL")
	healthcheckCmd.Flags().StringVar(&healthMode, "mode", "rpc", "Probe mode (http, rpc)")
	healthcheckCmd.Flags().DurationVar(&healthTimeout, "timeout", probe.DefaultTimeout, "Probe timeout")
	healthcheckCmd.Flags().StringVar(&healthToken, "token", "", "Bearer token for rpc mode (defaults to $MCP_AUTH_TOKEN)")
	RootCmd.AddCommand(healthcheckCmd)
}
