package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ihsan606/win-store/config"
	"github.com/ihsan606/win-store/internal/capture"
	"github.com/ihsan606/win-store/internal/proxy"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "winstore",
	Short: "win-store - passive Shopee capture sidecar",
	Long:  "Watches a browser tab browsing Shopee over the DevTools protocol, normalizes intercepted API responses and serves the aggregated data to page panels and MCP consumers.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("control-url", "", "DevTools websocket URL of a running browser (default: launch one)")
	rootCmd.PersistentFlags().Bool("headless", false, "Launch the browser headless")
	rootCmd.PersistentFlags().String("target-host", "", "Host fragment a tab must match to be watched")
	rootCmd.PersistentFlags().String("start-url", "", "URL to open when launching a browser")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose logging")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("control-url"); v != "" {
		cfg.ControlURL = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("headless"); v {
		cfg.Headless = true
	}
	if v, _ := rootCmd.PersistentFlags().GetString("target-host"); v != "" {
		cfg.TargetHost = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("start-url"); v != "" {
		cfg.StartURL = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("debug"); v {
		cfg.Debug = true
	}
}

func buildLogger() *zap.Logger {
	if cfg.Debug {
		log, _ := zap.NewDevelopment()
		return log
	}
	log, _ := zap.NewProduction()
	return log
}

// connectBrowser attaches to the configured browser, launching one with
// the start URL open when no control URL is given.
func connectBrowser() (*rod.Browser, func(), error) {
	if cfg.ControlURL != "" {
		browser := rod.New().ControlURL(cfg.ControlURL)
		if err := browser.Connect(); err != nil {
			return nil, nil, fmt.Errorf("connect browser: %w", err)
		}
		// Attached browsers belong to the user; never close them.
		return browser, func() {}, nil
	}

	l := launcher.New().Headless(cfg.Headless).Logger(io.Discard)
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}

	if cfg.StartURL != "" {
		if _, err := browser.Page(proto.TargetCreateTarget{URL: cfg.StartURL}); err != nil {
			browser.Close()
			l.Cleanup()
			return nil, nil, fmt.Errorf("open start page: %w", err)
		}
	}

	cleanup := func() {
		browser.Close()
		l.Cleanup()
	}
	return browser, cleanup, nil
}

func retryPolicy() capture.RetryPolicy {
	return capture.RetryPolicy{
		InitialDelay: cfg.ResolveInitialDelay,
		RetryDelay:   cfg.ResolveRetryDelay,
		MaxAttempts:  cfg.ResolveMaxAttempts,
	}
}

// buildProxyClient returns nil when no proxy credentials are configured.
func buildProxyClient() *proxy.Client {
	if cfg.ProxyUsername == "" && cfg.ProxyPassword == "" {
		return nil
	}
	return proxy.NewClient(cfg.ProxyPort, cfg.ProxyUsername, cfg.ProxyPassword)
}
