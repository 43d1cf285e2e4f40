// Package mcp exposes the capture pull operations as MCP tools, so
// local assistant and dashboard tooling can read the same snapshots the
// page panels receive.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ihsan606/win-store/internal/capture"
	"github.com/ihsan606/win-store/internal/proxy"
)

// API bundles the live components the tools read from.
type API struct {
	Watcher *capture.Watcher
	Proxy   *proxy.Client

	pull *capture.Dispatcher
}

func NewAPI(watcher *capture.Watcher, proxyClient *proxy.Client) *API {
	return &API{
		Watcher: watcher,
		Proxy:   proxyClient,
		pull:    capture.NewDispatcher(watcher.Store(), nil, nil),
	}
}

func newServer(api *API) *server.MCPServer {
	s := server.NewMCPServer(
		"win-store",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	registerTools(s, api)
	return s
}

// Serve starts the MCP stdio server with all tools registered.
func Serve(api *API) error {
	return server.ServeStdio(newServer(api))
}
