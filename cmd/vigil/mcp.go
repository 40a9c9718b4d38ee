package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/vigil"
	"github.com/aretw0/vigil/pkg/adapters/mcp"
	"github.com/aretw0/vigil/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/vigil/pkg/adapters/redis"
	"github.com/aretw0/vigil/pkg/ports"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the diff and record tools as an MCP Server over stdio.
This allows AI agents to diff snapshots and record replay observations as tools.

The record_observation tool persists to an in-memory store by default;
pass --redis to share recorded observations across processes.`,
	Run: func(cmd *cobra.Command, args []string) {
		redisAddr, _ := cmd.Flags().GetString("redis")

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		slog.SetDefault(logger)

		var store ports.RecordStore = memory.NewStore()
		if redisAddr != "" {
			store = redisAdapter.New(redisAddr, "", 0)
		}

		srv := mcp.NewServer(store, strings.TrimSpace(vigil.Version))

		slog.Info("Starting Vigil MCP Server (Stdio)...")
		if err := srv.ServeStdio(); err != nil {
			slog.Error("MCP Server execution failed", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("redis", "", "Redis address for the record store (empty for in-memory)")
}
