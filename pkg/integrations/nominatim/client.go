package nominatim

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/osmtree/osmtree/pkg/buildinfo"
	"github.com/osmtree/osmtree/pkg/cache"
	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/integrations"
)

// DefaultEndpoint is the public Nominatim instance.
const DefaultEndpoint = "https://nominatim.openstreetmap.org"

// Options configures [NewClient]. Zero values select the defaults.
type Options struct {
	Endpoint  string
	UserAgent string
	CacheTTL  time.Duration
}

// Place is one search result in jsonv2 format.
type Place struct {
	PlaceID     int64    `json:"place_id"`
	OSMType     string   `json:"osm_type"`
	OSMID       int64    `json:"osm_id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	AddressType string   `json:"addresstype"`
	PlaceRank   int      `json:"place_rank"`
	Importance  float64  `json:"importance"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	BoundingBox []string `json:"boundingbox"`
}

// ID returns the OSM id in decimal.
func (p Place) ID() string {
	return strconv.FormatInt(p.OSMID, 10)
}

// Label renders a result as "display_name (addresstype-osm_type:osm_id)".
func (p Place) Label() string {
	return fmt.Sprintf("%s (%s-%s:%d)", p.DisplayName, p.AddressType, p.OSMType, p.OSMID)
}

// Relations keeps the results that are OSM relations, in order.
func Relations(places []Place) []Place {
	out := []Place{}
	for _, p := range places {
		if p.OSMType == "relation" {
			out = append(out, p)
		}
	}
	return out
}

// Client searches a Nominatim instance.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Nominatim client with the given cache backend.
func NewClient(backend cache.Cache, opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.UserAgent == "" {
		opts.UserAgent = buildinfo.UserAgent()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cache.TTLSearch
	}
	headers := map[string]string{"User-Agent": opts.UserAgent}
	return &Client{
		Client:  integrations.NewClient(backend, "nominatim:", opts.CacheTTL, headers),
		baseURL: strings.TrimSuffix(opts.Endpoint, "/"),
	}
}

// Search runs a free-text query. An empty result is not an error.
//
// If refresh is true, the cache is bypassed and a fresh request is made.
func (c *Client) Search(ctx context.Context, query string, refresh bool) ([]Place, error) {
	if err := apperrors.ValidateQuery(query); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)

	url := fmt.Sprintf("%s/search?q=%s&format=jsonv2", c.baseURL, integrations.URLEncode(query))

	var places []Place
	err := c.Cached(ctx, c.Keyer().SearchKey(query), refresh, &places, func() error {
		places = nil
		return c.Get(ctx, url, &places)
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if places == nil {
		places = []Place{}
	}
	return places, nil
}
