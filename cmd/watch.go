package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ihsan606/win-store/internal/capture"
	"github.com/ihsan606/win-store/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch browser tabs and capture marketplace data",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := buildLogger()
	defer log.Sync()

	browser, cleanup, err := connectBrowser()
	if err != nil {
		return err
	}
	defer cleanup()

	watcher := capture.NewWatcher(browser, capture.NewStore(), retryPolicy(), cfg.TargetHost, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status := ui.NewStatusLine()
	status.Start("waiting for " + cfg.TargetHost + " tabs...")
	defer status.Stop()
	ctx = capture.WithProgress(ctx, status.Update)

	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
