package cache

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/evanhutnik/mapnav/internal/types"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"strings"
	"time"
)

const keyPrefix = "geocode:"

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*types.Coordinate, error)
}

// GeocodeCache keeps successful geocoding answers in Redis, keyed by
// provider and normalized address. Redis failures are logged and the lookup
// falls through to the wrapped geocoder; misses (unknown addresses) are
// never cached.
type GeocodeCache struct {
	next     Geocoder
	provider string
	rc       *redis.Client
	ttl      time.Duration
	Logger   *zap.SugaredLogger
}

func NewGeocodeCache(next Geocoder, provider string, rc *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *GeocodeCache {
	if provider == "" {
		panic("Missing provider name in geocode cache")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &GeocodeCache{next: next, provider: provider, rc: rc, ttl: ttl, Logger: logger}
}

func (c *GeocodeCache) Geocode(ctx context.Context, address string) (*types.Coordinate, error) {
	key := cacheKey(c.provider, address)

	raw, err := c.rc.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var coord types.Coordinate
		if err := json.Unmarshal(raw, &coord); err == nil {
			return &coord, nil
		}
		c.Logger.Warnw("discarding unreadable cached geocode", "key", key)
	case !errors.Is(err, redis.Nil):
		c.Logger.Errorw(err.Error(), "address", address, "action", "GeocodeCacheGet")
	}

	coord, err := c.next.Geocode(ctx, address)
	if err != nil || coord == nil {
		return coord, err
	}

	payload, _ := json.Marshal(coord)
	if err := c.rc.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.Logger.Errorw(err.Error(), "address", address, "action", "GeocodeCacheSet")
	}
	return coord, nil
}

func cacheKey(provider, address string) string {
	return keyPrefix + provider + ":" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}
