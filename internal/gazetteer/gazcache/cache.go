// Package gazcache provides an optional Redis-backed result cache that
// sits in front of a gazetteer.DataSource. It lets several stateless
// reader processes share lookup results instead of each holding a full
// in-memory index, and lets a process restart skip recomputation for
// hot queries. It never changes lookup semantics: a cache miss always
// falls through to the real DataSource.
package gazcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geonames/gazetteer/internal/gazetteer"
)

// LookupTTL is how long a cached lookup result is trusted. Location
// data changes only when the index is rebuilt from a new data release,
// so a long TTL is safe.
const LookupTTL = 7 * 24 * time.Hour

// Cache wraps a *redis.Client with gazetteer-shaped lookup keys.
type Cache struct {
	client *redis.Client
}

// New connects to the Redis instance named by REDIS_URL (defaulting to
// a local instance) and verifies the connection with a bounded ping.
func New() (*Cache, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	return NewWithURL(redisURL)
}

// NewWithURL connects to the Redis instance at url and verifies the
// connection with a bounded ping.
func NewWithURL(redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	provider := "Redis"
	if isUpstash(redisURL) {
		provider = "Upstash Redis"
	}
	slog.Info("gazetteer cache connection established", "provider", provider, "host", opt.Addr)
	return &Cache{client: client}, nil
}

// NewWithClient wraps an already-constructed client, e.g. one pointed at
// a miniredis instance in tests.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

func byNameKey(name string, resolution gazetteer.Resolution) string {
	if resolution == "" {
		return fmt.Sprintf("gaz:byname:%s:any", name)
	}
	return fmt.Sprintf("gaz:byname:%s:%s", name, resolution)
}

func byIDKey(id int64) string {
	return fmt.Sprintf("gaz:byid:%d", id)
}

// GetByName returns a previously cached search result for (name,
// resolution), or nil if there was no cache entry.
func (c *Cache) GetByName(ctx context.Context, name string, resolution gazetteer.Resolution) (map[int64]gazetteer.Location, error) {
	key := byNameKey(name, resolution)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		slog.Debug("gazetteer cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var raw map[string]gazetteer.Location
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal cached lookup %s: %w", key, err)
	}

	out := make(map[int64]gazetteer.Location, len(raw))
	for idStr, loc := range raw {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		out[id] = loc
	}
	slog.Debug("gazetteer cache hit", "key", key)
	return out, nil
}

// SetByName caches a search result for (name, resolution).
func (c *Cache) SetByName(ctx context.Context, name string, resolution gazetteer.Resolution, result map[int64]gazetteer.Location) error {
	raw := make(map[string]gazetteer.Location, len(result))
	for id, loc := range result {
		raw[strconv.FormatInt(id, 10)] = loc
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal lookup result: %w", err)
	}
	key := byNameKey(name, resolution)
	if err := c.client.Set(ctx, key, data, LookupTTL).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// GetByID returns a previously cached id lookup, or (zero, false, nil)
// on a cache miss.
func (c *Cache) GetByID(ctx context.Context, id int64) (gazetteer.Location, bool, error) {
	key := byIDKey(id)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return gazetteer.Location{}, false, nil
	}
	if err != nil {
		return gazetteer.Location{}, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	var loc gazetteer.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return gazetteer.Location{}, false, fmt.Errorf("unmarshal cached location %s: %w", key, err)
	}
	return loc, true, nil
}

// SetByID caches a single id lookup.
func (c *Cache) SetByID(ctx context.Context, id int64, loc gazetteer.Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("marshal location: %w", err)
	}
	return c.client.Set(ctx, byIDKey(id), data, LookupTTL).Err()
}

// Flush removes every cached gazetteer entry. Used after a rebuild of
// the underlying index, since cached results would otherwise outlive
// the data they were computed from.
func (c *Cache) Flush(ctx context.Context) error {
	return c.deleteByPattern(ctx, "gaz:*")
}

func (c *Cache) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	var deleted int64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("delete keys matching %s: %w", pattern, err)
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("gazetteer cache flushed", "pattern", pattern, "count", deleted)
	}
	return nil
}

// isUpstash reports whether url points at an Upstash-managed Redis
// instance, purely for logging/diagnostics parity with other deployment
// targets.
func isUpstash(url string) bool {
	return strings.Contains(url, "upstash.io")
}
