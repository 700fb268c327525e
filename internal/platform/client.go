package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/orderdesk/internal/logging"
	"github.com/muurk/orderdesk/internal/order"
	"github.com/muurk/orderdesk/internal/record"
	"github.com/muurk/orderdesk/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultCacheDuration is how long the category list is cached
	DefaultCacheDuration = 5 * time.Minute

	// RequestIDHeader carries the per-call request id
	RequestIDHeader = "X-Request-ID"
)

// Client talks to the platform's HTTP JSON API. It satisfies order.Catalog and
// record.Fetcher. Calls are never retried.
type Client struct {
	// BaseURL is the platform root (e.g., "http://localhost:8080")
	BaseURL string

	// Token is sent as a bearer token when set
	Token string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// CacheDuration is how long to cache categories (0 = no cache)
	CacheDuration time.Duration

	cachedCategories []string
	cacheTime        time.Time
	cacheMutex       sync.RWMutex
}

var (
	_ order.Catalog  = (*Client)(nil)
	_ record.Fetcher = (*Client)(nil)
)

// NewClient creates a client for the platform at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		HTTPClient:    &http.Client{Timeout: DefaultTimeout},
		CacheDuration: DefaultCacheDuration,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetToken sets the bearer token
func (c *Client) SetToken(token string) {
	c.Token = token
}

// SetCacheDuration sets the category cache validity. 0 disables caching.
func (c *Client) SetCacheDuration(d time.Duration) {
	c.CacheDuration = d
	if d == 0 {
		c.InvalidateCache()
	}
}

// InvalidateCache clears the cached category list
func (c *Client) InvalidateCache() {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()
	c.cachedCategories = nil
	c.cacheTime = time.Time{}
}

// Ping performs a health check against the platform
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/api/health", nil, nil, nil)
}

// FetchRecord retrieves a record with the given fields
func (c *Client) FetchRecord(ctx context.Context, id string, fields []string) (*record.Record, error) {
	q := url.Values{}
	if len(fields) > 0 {
		q.Set("fields", strings.Join(fields, ","))
	}
	var rec record.Record
	if err := c.do(ctx, "fetchRecord", http.MethodGet, "/api/records/"+url.PathEscape(id), q, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SearchProducts returns one page of products matching term and category
func (c *Client) SearchProducts(ctx context.Context, term, category string, offset, limit int) ([]order.Product, error) {
	q := filterQuery(term, category)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	products := []order.Product{}
	if err := c.do(ctx, "searchProducts", http.MethodGet, "/api/products", q, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CountProducts returns the number of products matching term and category
func (c *Client) CountProducts(ctx context.Context, term, category string) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, "countProducts", http.MethodGet, "/api/products/count", filterQuery(term, category), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// ListCategories returns the distinct product categories.
// The list is cached for CacheDuration.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	if c.CacheDuration > 0 {
		c.cacheMutex.RLock()
		if c.cachedCategories != nil && time.Since(c.cacheTime) < c.CacheDuration {
			cached := append([]string(nil), c.cachedCategories...)
			c.cacheMutex.RUnlock()
			return cached, nil
		}
		c.cacheMutex.RUnlock()
	}

	categories := []string{}
	if err := c.do(ctx, "listCategories", http.MethodGet, "/api/products/categories", nil, nil, &categories); err != nil {
		return nil, err
	}

	if c.CacheDuration > 0 {
		c.cacheMutex.Lock()
		c.cachedCategories = append([]string(nil), categories...)
		c.cacheTime = time.Now()
		c.cacheMutex.Unlock()
	}
	return categories, nil
}

// CreateOrder submits an order for parentID
func (c *Client) CreateOrder(ctx context.Context, parentID string, lines []order.Line) (*order.Result, error) {
	body := struct {
		ParentID string       `json:"parentId"`
		Lines    []order.Line `json:"lines"`
	}{ParentID: parentID, Lines: lines}

	var res order.Result
	if err := c.do(ctx, "createOrder", http.MethodPost, "/api/orders", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func filterQuery(term, category string) url.Values {
	q := url.Values{}
	if term != "" {
		q.Set("term", term)
	}
	if category != "" {
		q.Set("category", category)
	}
	return q
}

// errorBody is the JSON shape of backend error responses
type errorBody struct {
	Message string `json:"message"`
}

// do performs a single request. in is JSON-encoded when non-nil; out receives
// the decoded 2xx body when non-nil.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, in, out any) (err error) {
	requestID := uuid.NewString()
	start := time.Now()
	defer func() {
		logging.LogRemoteCall(operation, requestID, time.Since(start), err)
	}()

	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return NewNetworkError("failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent("cli"))
	req.Header.Set(RequestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		pe := NewNetworkError(operation+" request failed", err)
		pe.RequestID = requestID
		return pe
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		pe := NewNetworkError("failed to read response body", err)
		pe.RequestID = requestID
		return pe
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		pe := NewStatusError(resp.StatusCode, eb.Message)
		pe.RequestID = requestID
		return pe
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		pe := NewParseError("failed to parse "+operation+" response", err)
		pe.RequestID = requestID
		return pe
	}
	return nil
}
