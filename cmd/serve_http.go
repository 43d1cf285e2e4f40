package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ihsan606/win-store/internal/capture"
	mcpserver "github.com/ihsan606/win-store/mcp"
)

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Watch tabs and serve capture data over MCP HTTP",
	Long:  "Start the MCP server over HTTP so remote dashboards can pull the captured snapshots.",
	RunE:  runServeHTTP,
}

func init() {
	serveHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	rootCmd.AddCommand(serveHTTPCmd)
}

func runServeHTTP(cmd *cobra.Command, args []string) error {
	log := buildLogger()
	defer log.Sync()

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	browser, cleanup, err := connectBrowser()
	if err != nil {
		return err
	}
	defer cleanup()

	watcher := capture.NewWatcher(browser, capture.NewStore(), retryPolicy(), cfg.TargetHost, log)
	api := mcpserver.NewAPI(watcher, buildProxyClient())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(ctx)
	})
	g.Go(func() error {
		defer stop()
		return mcpserver.ServeHTTP(fmt.Sprintf(":%s", port), cfg.APIKey, api)
	})
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
