package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/sitesearch/server"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose search as an MCP tool over stdio",
	Long: `MCP speaks line-delimited JSON-RPC on stdin/stdout and offers the
search_content, index_stats and reindex tools. Logs go to stderr. When watch
is enabled in the configuration, content changes trigger a rebuild.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, os.Stderr)
	a.build(ctx)

	srv, err := a.server()
	if err != nil {
		return err
	}

	if cfg.Watch {
		go func() {
			if err := a.watch(ctx); err != nil {
				a.logger.Warn("content watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	return server.ServeStdio(ctx, srv, os.Stdin, os.Stdout)
}
