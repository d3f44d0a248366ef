package main

import (
	"github.com/nick-dorsch/taskheap/internal/mcp"
	"github.com/spf13/cobra"
)

var serveMCP = mcp.Serve

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the queue as MCP tools over stdio.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := newSessions()
		if err != nil {
			return err
		}
		return serveMCP(mcp.NewServer(sessions, version))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
