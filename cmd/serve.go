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

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Watch tabs and serve capture data over MCP stdio",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := buildLogger()
	defer log.Sync()

	browser, cleanup, err := connectBrowser()
	if err != nil {
		return err
	}
	defer cleanup()

	watcher := capture.NewWatcher(browser, capture.NewStore(), retryPolicy(), cfg.TargetHost, log)
	api := mcpserver.NewAPI(watcher, buildProxyClient())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting win-store MCP server on stdio...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(ctx)
	})
	g.Go(func() error {
		defer stop()
		return mcpserver.Serve(api)
	})
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
