package overpass

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/osmtree/osmtree/pkg/buildinfo"
	"github.com/osmtree/osmtree/pkg/cache"
	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/integrations"
)

// DefaultEndpoint is the public Overpass interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// DefaultQueryTimeout is the server-side timeout placed in every query.
const DefaultQueryTimeout = 90 * time.Second

// Options configures [NewClient]. Zero values select the defaults.
type Options struct {
	Endpoint     string
	UserAgent    string
	QueryTimeout time.Duration
	CacheTTL     time.Duration
}

// Client fetches relations from an Overpass interpreter.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	endpoint     string
	queryTimeout time.Duration
}

// NewClient creates an Overpass client with the given cache backend.
// The HTTP timeout is set slightly above the query timeout so the server gets
// a chance to report its own timeout first.
func NewClient(backend cache.Cache, opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.UserAgent == "" {
		opts.UserAgent = buildinfo.UserAgent()
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = DefaultQueryTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.TTLRelation
	}

	headers := map[string]string{"User-Agent": opts.UserAgent}
	c := &Client{
		Client:       integrations.NewClient(backend, "overpass:", opts.CacheTTL, headers),
		endpoint:     opts.Endpoint,
		queryTimeout: opts.QueryTimeout,
	}
	c.SetTimeout(opts.QueryTimeout + 15*time.Second)
	return c
}

// Query returns the Overpass QL text for ids at the given detail level.
func (c *Client) Query(ids []string, detail Detail) string {
	return fmt.Sprintf("[out:json][timeout:%d];\nrel(id:%s);\n%s",
		int(c.queryTimeout.Seconds()), strings.Join(ids, ","), detail.out())
}

// FetchRelations retrieves the relations with the given decimal ids in one
// request.
//
// If refresh is true, the cache is bypassed and a fresh request is made.
//
// Returns:
//   - the decoded response on success (never nil when err is nil)
//   - an INVALID_ID or INVALID_INPUT [apperrors.Error] for malformed ids
//   - [integrations.ErrNetwork] for transport failures, non-2xx responses
//     and server-side runtime errors
//   - [integrations.ErrEmptyResult] when no element matched
func (c *Client) FetchRelations(ctx context.Context, ids []string, detail Detail, refresh bool) (*Response, error) {
	if err := apperrors.ValidateRelationIDs(ids); err != nil {
		return nil, err
	}
	if !detail.Valid() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "unknown detail level %q", detail)
	}

	key := c.Keyer().RelationKey(ids, string(detail))
	form := url.Values{"data": {c.Query(ids, detail)}}

	var resp Response
	err := c.Cached(ctx, key, refresh, &resp, func() error {
		resp = Response{}
		if err := c.PostForm(ctx, c.endpoint, form, &resp); err != nil {
			return err
		}
		return checkResponse(&resp)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch relations %s: %w", strings.Join(ids, ","), err)
	}
	return &resp, nil
}

// FetchRelation is [Client.FetchRelations] for a single id.
func (c *Client) FetchRelation(ctx context.Context, id string, detail Detail, refresh bool) (*Element, error) {
	resp, err := c.FetchRelations(ctx, []string{id}, detail, refresh)
	if err != nil {
		return nil, err
	}
	if e, ok := Index(resp)[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("fetch relation %s: %w", id, integrations.ErrEmptyResult)
}

// checkResponse rejects answers that must not be cached.
func checkResponse(resp *Response) error {
	if len(resp.Elements) > 0 {
		return nil
	}
	// Overpass reports runtime errors (timeouts, memory) as a 200 with a remark.
	if strings.Contains(resp.Remark, "error") {
		return fmt.Errorf("%w: %s", integrations.ErrNetwork, resp.Remark)
	}
	return integrations.ErrEmptyResult
}
