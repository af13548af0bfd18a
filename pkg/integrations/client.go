package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osmtree/osmtree/pkg/cache"
	"github.com/osmtree/osmtree/pkg/httputil"
	"github.com/osmtree/osmtree/pkg/observability"
)

// Client provides shared HTTP functionality for the OSM service clients.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client with the given cache and default headers.
// Cache keys are namespaced with namespace and entries expire after ttl.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed, and nil for c to
// disable caching.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(DefaultTimeout),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// SetTimeout changes the request timeout of the underlying HTTP client.
func (c *Client) SetTimeout(d time.Duration) {
	c.http.Timeout = d
}

// SetKeyer replaces the cache key generator, for example with a
// [cache.ScopedKeyer].
func (c *Client) SetKeyer(k cache.Keyer) {
	if k != nil {
		c.keyer = k
	}
}

// Keyer returns the cache key generator.
func (c *Client) Keyer() cache.Keyer { return c.keyer }

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
// Failed fetches are retried with backoff when the error is retryable and
// are never cached.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	full := c.keyer.HTTPKey(c.namespace, key)
	hooks := observability.Cache()
	keyType := strings.TrimSuffix(c.namespace, ":")

	if !refresh {
		if data, ok, err := c.cache.Get(ctx, full); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, keyType)
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, keyType)
	}

	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := c.cache.Set(ctx, full, data, c.ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers. Retries are left to [Client.Cached].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, http.MethodGet, url, nil, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	return decode(body, v)
}

// PostForm performs an HTTP POST with an application/x-www-form-urlencoded
// body and JSON-decodes the response into v.
func (c *Client) PostForm(ctx context.Context, url string, form url.Values, v any) error {
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	body, err := c.doRequest(ctx, http.MethodPost, url, strings.NewReader(form.Encode()), headers)
	if err != nil {
		return err
	}
	defer body.Close()
	return decode(body, v)
}

func decode(body io.Reader, v any) error {
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, url string, body io.Reader, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, resp.Status); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int, status string) error {
	se := &StatusError{StatusCode: code, Status: status}
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, se)
	case httputil.RetryableStatus(code):
		return httputil.Retryable(fmt.Errorf("%w: %w", ErrNetwork, se))
	default:
		return fmt.Errorf("%w: %w", ErrNetwork, se)
	}
}
