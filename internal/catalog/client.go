package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const requestTimeout = 30 * time.Second

// Client is a read-only facade over the WooCommerce REST API. Remote
// failures are logged and surfaced as empty results, never as errors, so
// the conversation flow stays alive when the store is down.
type Client struct {
	apiURL         string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
}

func NewClient(baseURL, consumerKey, consumerSecret string) (*Client, error) {
	if baseURL == "" || consumerKey == "" || consumerSecret == "" {
		return nil, fmt.Errorf("woocommerce credentials are not properly configured")
	}
	return &Client{
		apiURL:         strings.TrimRight(baseURL, "/") + "/wp-json/wc/v3",
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient:     &http.Client{Timeout: requestTimeout},
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.apiURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "TelegramBot/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("woocommerce api error: %d - %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListCategories returns categories that actually contain products,
// ordered by name ascending.
func (c *Client) ListCategories(ctx context.Context) []Category {
	params := url.Values{}
	params.Set("per_page", "50")
	params.Set("orderby", "name")
	params.Set("order", "asc")

	var categories []Category
	if err := c.get(ctx, "products/categories", params, &categories); err != nil {
		log.Printf("failed to fetch categories: %v", err)
		return nil
	}

	out := categories[:0]
	for _, cat := range categories {
		if cat.Count > 0 {
			out = append(out, cat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListProducts returns published products ordered by popularity,
// optionally filtered by category.
func (c *Client) ListProducts(ctx context.Context, categoryID, page, perPage int) []Product {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("status", "publish")
	params.Set("orderby", "popularity")
	params.Set("order", "desc")
	if categoryID > 0 {
		params.Set("category", strconv.Itoa(categoryID))
	}

	var products []Product
	if err := c.get(ctx, "products", params, &products); err != nil {
		log.Printf("failed to fetch products: %v", err)
		return nil
	}
	return products
}

// GetProduct returns a single product, or nil when it does not exist or
// the store is unreachable.
func (c *Client) GetProduct(ctx context.Context, productID int) *Product {
	var product Product
	if err := c.get(ctx, fmt.Sprintf("products/%d", productID), nil, &product); err != nil {
		log.Printf("failed to fetch product %d: %v", productID, err)
		return nil
	}
	return &product
}

// SearchProducts runs a text search over published products.
func (c *Client) SearchProducts(ctx context.Context, term string, perPage int) []Product {
	params := url.Values{}
	params.Set("search", term)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("status", "publish")

	var products []Product
	if err := c.get(ctx, "products", params, &products); err != nil {
		log.Printf("failed to search products for %q: %v", term, err)
		return nil
	}
	return products
}

// FindOrderByNumber locates an order through the search endpoint,
// constrained to a single result.
func (c *Client) FindOrderByNumber(ctx context.Context, number string) *Order {
	params := url.Values{}
	params.Set("search", number)
	params.Set("per_page", "1")

	var orders []Order
	if err := c.get(ctx, "orders", params, &orders); err != nil {
		log.Printf("failed to search order %q: %v", number, err)
		return nil
	}
	if len(orders) == 0 {
		log.Printf("no order found with number %q", number)
		return nil
	}
	return &orders[0]
}
