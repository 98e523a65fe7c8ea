package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"courier-bridge-service/config"
	"go.uber.org/zap"
)

const (
	apiPrefix        = "/wp-json/wc/v3"
	totalPagesHeader = "X-WP-TotalPages"
	pingTimeout      = 10 * time.Second
)

// Client reads products and orders from a WooCommerce store using basic
// auth with the REST consumer key and secret.
type Client struct {
	config     config.StorefrontConfig
	logger     *zap.Logger
	httpClient *http.Client
}

func NewClient(cfg config.StorefrontConfig, logger *zap.Logger, httpClient *http.Client) *Client {
	cfg.StoreURL = strings.TrimRight(cfg.StoreURL, "/")
	if cfg.PerPage <= 0 {
		cfg.PerPage = 100
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{config: cfg, logger: logger.Named("woocommerce"), httpClient: httpClient}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	u := c.config.StoreURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.config.ConsumerKey, c.config.ConsumerSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return resp, nil
}

// Ping checks that the store answers with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp, err := c.get(ctx, "/system_status", nil)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// fetchAll walks a list endpoint page by page until it sees an empty page
// or reaches the page count advertised in X-WP-TotalPages. On error it
// returns what was collected so far together with the error.
func fetchAll[T any](ctx context.Context, c *Client, path string, extra url.Values, progress func(int)) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		query := url.Values{}
		for k, v := range extra {
			query[k] = v
		}
		query.Set("per_page", strconv.Itoa(c.config.PerPage))
		query.Set("page", strconv.Itoa(page))

		resp, err := c.get(ctx, path, query)
		if err != nil {
			return all, fmt.Errorf("fetch %s page %d: %w", path, page, err)
		}

		var items []T
		err = json.NewDecoder(resp.Body).Decode(&items)
		_ = resp.Body.Close()
		if err != nil {
			return all, fmt.Errorf("failed to decode %s page %d: %w", path, page, err)
		}

		if len(items) == 0 {
			return all, nil
		}
		all = append(all, items...)
		if progress != nil {
			progress(len(all))
		}

		totalPages, err := strconv.Atoi(resp.Header.Get(totalPagesHeader))
		if err != nil {
			totalPages = 1
		}
		if page >= totalPages {
			return all, nil
		}
	}
}

func (c *Client) GetAllProducts(ctx context.Context, progress func(int)) ([]Product, error) {
	return fetchAll[Product](ctx, c, "/products", nil, progress)
}

func (c *Client) GetAllOrders(ctx context.Context, progress func(int)) ([]Order, error) {
	return fetchAll[Order](ctx, c, "/orders", url.Values{"status": {"any"}}, progress)
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*Order, error) {
	resp, err := c.get(ctx, "/orders/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order %d: %w", id, err)
	}
	return &order, nil
}
