// Package shopify reads product catalogs through the Shopify Admin GraphQL API.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/infrastructure/resilience"
)

const (
	DefaultAPIVersion = "2024-10"
	defaultPageSize   = 100
	defaultMaxPages   = 50
)

const productsQuery = `query Products($first: Int!, $after: String) {
  products(first: $first, after: $after, query: "status:active") {
    pageInfo { hasNextPage endCursor }
    nodes {
      id
      handle
      title
      descriptionHtml
      productType
      tags
      totalInventory
      priceRangeV2 { minVariantPrice { amount currencyCode } }
      images(first: 5) { nodes { url } }
      variants(first: 100) { nodes { price availableForSale } }
    }
  }
}`

type Options struct {
	Shop        string
	AccessToken string
	APIVersion  string
	PageSize    int
	MaxPages    int
	Timeout     time.Duration
	// BaseURL replaces https://<shop> and exists for tests and proxies.
	BaseURL    string
	HTTPClient *http.Client
	Executor   *resilience.Executor
}

// Client is a ports.CatalogProvider for a single installed shop.
type Client struct {
	shop        string
	accessToken string
	apiVersion  string
	pageSize    int
	maxPages    int
	baseURL     string
	httpClient  *http.Client
	executor    *resilience.Executor
}

func New(options Options) (*Client, error) {
	shop := strings.TrimSpace(options.Shop)
	if shop == "" {
		return nil, fmt.Errorf("shopify shop domain is required")
	}
	if strings.TrimSpace(options.AccessToken) == "" {
		return nil, fmt.Errorf("shopify access token is required")
	}

	c := &Client{
		shop:        shop,
		accessToken: options.AccessToken,
		apiVersion:  options.APIVersion,
		pageSize:    options.PageSize,
		maxPages:    options.MaxPages,
		baseURL:     strings.TrimRight(options.BaseURL, "/"),
		httpClient:  options.HTTPClient,
		executor:    options.Executor,
	}
	if c.apiVersion == "" {
		c.apiVersion = DefaultAPIVersion
	}
	if c.pageSize <= 0 || c.pageSize > 250 {
		c.pageSize = defaultPageSize
	}
	if c.maxPages <= 0 {
		c.maxPages = defaultMaxPages
	}
	if c.baseURL == "" {
		c.baseURL = "https://" + shop
	}
	if c.httpClient == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c, nil
}

// ListProducts walks the catalog with cursor pagination, stopping after maxPages.
func (c *Client) ListProducts(ctx context.Context, shop string) ([]domain.Product, error) {
	if shop = strings.TrimSpace(shop); shop != "" && !strings.EqualFold(shop, c.shop) {
		return nil, domain.WrapError(domain.ErrNotFound, "list products", fmt.Errorf("shop %q is not installed", shop))
	}

	products := make([]domain.Product, 0, c.pageSize)
	var cursor *string
	for page := 0; page < c.maxPages; page++ {
		conn, err := resilience.Call(ctx, c.executor, "shopify.products", func(callCtx context.Context) (productConnection, error) {
			return c.fetchPage(callCtx, cursor)
		}, resilience.ClassifyHTTPError)
		if err != nil {
			return nil, resilience.WrapTemporary("shopify products", err, resilience.ClassifyHTTPError)
		}

		for _, node := range conn.Nodes {
			products = append(products, node.toDomain())
		}
		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
			return products, nil
		}
		next := conn.PageInfo.EndCursor
		cursor = &next
	}
	return products, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type productsResponse struct {
	Data struct {
		Products productConnection `json:"products"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type productConnection struct {
	PageInfo struct {
		HasNextPage bool   `json:"hasNextPage"`
		EndCursor   string `json:"endCursor"`
	} `json:"pageInfo"`
	Nodes []productNode `json:"nodes"`
}

func (c *Client) fetchPage(ctx context.Context, cursor *string) (productConnection, error) {
	body, err := json.Marshal(graphQLRequest{
		Query: productsQuery,
		Variables: map[string]any{
			"first": c.pageSize,
			"after": cursor,
		},
	})
	if err != nil {
		return productConnection{}, fmt.Errorf("marshal products query: %w", err)
	}

	url := fmt.Sprintf("%s/admin/api/%s/graphql.json", c.baseURL, c.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return productConnection{}, fmt.Errorf("create products request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return productConnection{}, fmt.Errorf("shopify products request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return productConnection{}, resilience.NewHTTPStatusError("shopify", "products", resp)
	}

	var out productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return productConnection{}, fmt.Errorf("decode products response: %w", err)
	}
	if len(out.Errors) > 0 {
		messages := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			messages = append(messages, e.Message)
		}
		return productConnection{}, fmt.Errorf("shopify graphql: %s", strings.Join(messages, "; "))
	}
	return out.Data.Products, nil
}

type money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type productNode struct {
	ID              string   `json:"id"`
	Handle          string   `json:"handle"`
	Title           string   `json:"title"`
	DescriptionHTML string   `json:"descriptionHtml"`
	ProductType     string   `json:"productType"`
	Tags            []string `json:"tags"`
	TotalInventory  *int     `json:"totalInventory"`
	PriceRange      struct {
		MinVariantPrice money `json:"minVariantPrice"`
	} `json:"priceRangeV2"`
	Images struct {
		Nodes []struct {
			URL string `json:"url"`
		} `json:"nodes"`
	} `json:"images"`
	Variants struct {
		Nodes []struct {
			Price            string `json:"price"`
			AvailableForSale bool   `json:"availableForSale"`
		} `json:"nodes"`
	} `json:"variants"`
}

func (n productNode) toDomain() domain.Product {
	product := domain.Product{
		ID:             n.ID,
		Handle:         n.Handle,
		Title:          n.Title,
		Description:    HTMLToText(n.DescriptionHTML),
		ProductType:    n.ProductType,
		Tags:           n.Tags,
		Price:          parseAmount(n.PriceRange.MinVariantPrice.Amount),
		Currency:       n.PriceRange.MinVariantPrice.CurrencyCode,
		TotalInventory: n.TotalInventory,
	}
	for _, img := range n.Images.Nodes {
		if img.URL != "" {
			product.ImageURLs = append(product.ImageURLs, img.URL)
		}
	}
	for _, v := range n.Variants.Nodes {
		product.Variants = append(product.Variants, domain.Variant{
			Price:            parseAmount(v.Price),
			AvailableForSale: v.AvailableForSale,
		})
	}
	if product.Price == 0 && len(product.Variants) > 0 {
		product.Price = product.Variants[0].Price
	}
	return product
}

func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}
