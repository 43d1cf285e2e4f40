package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ihsan606/win-store/internal/capture"
)

func registerTools(s *server.MCPServer, api *API) {
	// get_captured_data
	capturedTool := mcp.NewTool("get_captured_data",
		mcp.WithDescription("Get the accumulated shop and product snapshot captured for a tab"),
		mcp.WithString("tab",
			mcp.Description("Tab id (default: the only watched tab)"),
		),
	)
	s.AddTool(capturedTool, api.handleCapturedData)

	// get_search_data
	searchTool := mcp.NewTool("get_search_data",
		mcp.WithDescription("Get the latest captured search results for a tab"),
		mcp.WithString("tab",
			mcp.Description("Tab id (default: the only watched tab)"),
		),
	)
	s.AddTool(searchTool, api.handleSearchData)

	// get_category_data
	categoryTool := mcp.NewTool("get_category_data",
		mcp.WithDescription("Get the latest captured category results and official-store aggregates for a tab"),
		mcp.WithString("tab",
			mcp.Description("Tab id (default: the only watched tab)"),
		),
	)
	s.AddTool(categoryTool, api.handleCategoryData)

	// force_refresh_capture
	refreshTool := mcp.NewTool("force_refresh_capture",
		mcp.WithDescription("Reset a tab's aggregation and reload the page to re-trigger capture"),
		mcp.WithString("tab",
			mcp.Description("Tab id (default: the only watched tab)"),
		),
	)
	s.AddTool(refreshTool, api.handleForceRefresh)

	// list_tabs
	tabsTool := mcp.NewTool("list_tabs",
		mcp.WithDescription("List the tabs currently being watched"),
	)
	s.AddTool(tabsTool, api.handleListTabs)

	// fetch_product_detail
	fetchTool := mcp.NewTool("fetch_product_detail",
		mcp.WithDescription("Fetch one product detail through the local relay proxy"),
		mcp.WithNumber("item_id",
			mcp.Required(),
			mcp.Description("Item id"),
		),
		mcp.WithNumber("shop_id",
			mcp.Required(),
			mcp.Description("Shop id"),
		),
	)
	s.AddTool(fetchTool, api.handleFetchDetail)
}

// resolveTab picks the requested tab, defaulting to the only watched one.
func (a *API) resolveTab(request mcp.CallToolRequest) (capture.TabID, error) {
	tab := capture.TabID(request.GetString("tab", ""))
	if tab != "" {
		return tab, nil
	}
	tabs := a.Watcher.Tabs()
	if len(tabs) == 1 {
		return tabs[0], nil
	}
	return "", fmt.Errorf("tab is required when %d tabs are watched", len(tabs))
}

func jsonResult(v any) *mcp.CallToolResult {
	if v == nil {
		return mcp.NewToolResultText("null")
	}
	data, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(data))
}

func (a *API) handleCapturedData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tab, err := a.resolveTab(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if snap := a.pull.CapturedData(tab); snap != nil {
		return jsonResult(snap), nil
	}
	return jsonResult(nil), nil
}

func (a *API) handleSearchData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tab, err := a.resolveTab(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res := a.pull.SearchData(tab); res != nil {
		return jsonResult(res), nil
	}
	return jsonResult(nil), nil
}

func (a *API) handleCategoryData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tab, err := a.resolveTab(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res := a.pull.CategoryData(tab); res != nil {
		return jsonResult(res), nil
	}
	return jsonResult(nil), nil
}

func (a *API) handleForceRefresh(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tab, err := a.resolveTab(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	session, ok := a.Watcher.Session(tab)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no session for tab %s", tab)), nil
	}
	session.ForceRefresh(ctx)
	return mcp.NewToolResultText(`{"ok": true}`), nil
}

func (a *API) handleListTabs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(a.Watcher.Tabs()), nil
}

func (a *API) handleFetchDetail(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if a.Proxy == nil {
		return mcp.NewToolResultError("detail proxy is not configured"), nil
	}
	itemID := int64(request.GetInt("item_id", 0))
	shopID := int64(request.GetInt("shop_id", 0))
	if itemID == 0 || shopID == 0 {
		return mcp.NewToolResultError("item_id and shop_id are required"), nil
	}

	detail, err := a.Proxy.FetchDetail(ctx, itemID, shopID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("proxy fetch error: %v", err)), nil
	}
	return jsonResult(detail), nil
}
