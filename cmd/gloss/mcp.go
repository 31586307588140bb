package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glosskit/gloss/internal/cli"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the review engine as an MCP server over stdio, so agents can
open dialogs, import annotations and commit reviews as tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		debug, _ := cmd.Flags().GetBool("debug")
		if err := cli.RunMCP(cli.MCPOptions{Config: cfg, Debug: debug}); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
