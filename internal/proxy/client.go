// Package proxy fetches product details from the local relay proxy.
// The proxy answers with the same polymorphic detail shape as the
// passively captured endpoint, so its responses flow through the same
// normalizer.
package proxy

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/ihsan606/win-store/internal/httputil"
	"github.com/ihsan606/win-store/internal/models"
	"github.com/ihsan606/win-store/internal/shopee"
)

// Client calls the local detail proxy with basic-auth credentials.
// Failures are surfaced to the caller and never retried automatically;
// this is the one pull-style fetch path with an explicit error contract.
type Client struct {
	http     *http.Client
	baseURL  string
	username string
	password string
	limiter  *rate.Limiter
}

func NewClient(port, username, password string) *Client {
	return &Client{
		http:     httputil.NewHTTPClient(),
		baseURL:  fmt.Sprintf("http://127.0.0.1:%s", port),
		username: username,
		password: password,
		limiter:  rate.NewLimiter(rate.Limit(2), 1),
	}
}

// FetchDetail retrieves and normalizes one product detail by identity
// pair.
func (c *Client) FetchDetail(ctx context.Context, itemID, shopID int64) (*models.ProductDetail, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/item/get?item_id=%d&shop_id=%d", c.baseURL, itemID, shopID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read proxy response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proxy response status %d: %s", resp.StatusCode, string(body))
	}

	detail, err := shopee.NormalizeDetail(body)
	if err != nil {
		return nil, fmt.Errorf("normalize proxy detail: %w", err)
	}
	return detail, nil
}
