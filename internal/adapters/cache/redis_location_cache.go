package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"route-selection-client/internal/domain"
	"route-selection-client/internal/platform/obs"
	"route-selection-client/internal/ports"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "location:"

// RedisLocationCache stores each location as a JSON value under location:{id}.
type RedisLocationCache struct {
	Client   redis.UniversalClient
	TTL      time.Duration
	Observer obs.Observer
}

func NewRedisLocationCache(client redis.UniversalClient, ttl time.Duration, o obs.Observer) *RedisLocationCache {
	return &RedisLocationCache{Client: client, TTL: ttl, Observer: o}
}

// OpenRedis parses a redis:// URL and pings the server.
func OpenRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type redisLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (r *RedisLocationCache) GetMany(
	ctx context.Context,
	ids []string,
) (_ map[string]domain.Location, err error) {
	defer obs.Time(ctx, r.Observer, "location.cache.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("location cache: redis client is nil")
	}

	uniq := uniqueIDs(ids)
	if len(uniq) == 0 {
		return map[string]domain.Location{}, nil
	}

	keys := make([]string, len(uniq))
	for i, id := range uniq {
		keys[i] = redisKeyPrefix + id
	}

	vals, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get location cache: mget: %w", err)
	}

	out := make(map[string]domain.Location, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}

		var loc redisLocation
		if err := json.Unmarshal([]byte(s), &loc); err != nil {
			// A corrupt entry is treated as a miss.
			continue
		}
		out[uniq[i]] = domain.Location{ID: uniq[i], Lat: loc.Lat, Lon: loc.Lon}
	}

	return out, nil
}

func (r *RedisLocationCache) PutMany(ctx context.Context, locations []domain.Location) (err error) {
	defer obs.Time(ctx, r.Observer, "location.cache.PutMany")(&err)

	if r.Client == nil {
		return errors.New("location cache: redis client is nil")
	}

	if len(locations) == 0 {
		return nil
	}

	pipe := r.Client.TxPipeline()
	for _, loc := range locations {
		if !loc.Valid() {
			return fmt.Errorf("insert location cache: invalid location %q", loc.ID)
		}

		b, err := json.Marshal(redisLocation{Lat: loc.Lat, Lon: loc.Lon})
		if err != nil {
			return fmt.Errorf("insert location cache node=%q: marshal: %w", loc.ID, err)
		}
		pipe.Set(ctx, redisKeyPrefix+loc.ID, b, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert location cache: exec pipeline: %w", err)
	}
	return nil
}

var _ ports.LocationCache = (*RedisLocationCache)(nil)
