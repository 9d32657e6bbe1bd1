package cmd

import (
	"github.com/huangsam/fragility/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Fragility MCP server",
	Long:  `Launch an MCP server that allows AI agents to assess and compare regions via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Headers are only printed by the CLI executors, so stdio
		// stays clean for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
