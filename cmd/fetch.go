package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [item_id] [shop_id]",
	Short: "Fetch one product detail through the local relay proxy",
	Args:  cobra.ExactArgs(2),
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item_id %q", args[0])
	}
	shopID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid shop_id %q", args[1])
	}

	client := buildProxyClient()
	if client == nil {
		return fmt.Errorf("proxy credentials not configured (WINSTORE_PROXY_USERNAME / WINSTORE_PROXY_PASSWORD)")
	}

	detail, err := client.FetchDetail(context.Background(), itemID, shopID)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(detail)
}
