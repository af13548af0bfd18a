package config

import (
	"strconv"
	"time"

	apperrors "github.com/osmtree/osmtree/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OSMTREE_"

// LookupFunc has the signature of [os.LookupEnv].
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from OSMTREE_* variables. Set but empty
// variables are ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return v, ok && v != ""
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"NOMINATIM_URL", &c.NominatimURL},
		{"OVERPASS_URL", &c.OverpassURL},
		{"USER_AGENT", &c.UserAgent},
		{"PREFIX", &c.Prefix},
		{"CACHE_BACKEND", &c.Cache.Backend},
		{"CACHE_DIR", &c.Cache.Dir},
		{"REDIS_ADDR", &c.Cache.RedisAddr},
		{"REDIS_PASSWORD", &c.Cache.RedisPassword},
		{"SERVER_ADDR", &c.Server.Addr},
	}
	for _, s := range strs {
		if v, ok := get(s.name); ok {
			*s.dst = v
		}
	}

	durs := []struct {
		name string
		dst  *time.Duration
	}{
		{"QUERY_TIMEOUT", &c.QueryTimeout},
		{"CACHE_TTL", &c.Cache.TTL},
	}
	for _, d := range durs {
		if v, ok := get(d.name); ok {
			dur, err := time.ParseDuration(v)
			if err != nil {
				return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, d.name)
			}
			*d.dst = dur
		}
	}

	if v, ok := get("REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "%sREDIS_DB must be a non-negative integer, got %q", EnvPrefix, v)
		}
		c.Cache.RedisDB = n
	}
	return nil
}
