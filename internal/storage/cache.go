package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"deja-vocab/internal/types"

	"github.com/redis/go-redis/v9"
)

// CachedSubtitles 自动获取的字幕不入库，只在缓存中保留一段时间
type CachedSubtitles struct {
	VideoId   string            `json:"video_id"`
	Language  string            `json:"language"`
	Generated bool              `json:"generated"`
	Merged    bool              `json:"merged"`
	Cues      []types.MergedCue `json:"cues"`
}

type SubtitleCache interface {
	Get(ctx context.Context, key string) (*CachedSubtitles, bool, error)
	Set(ctx context.Context, key string, value *CachedSubtitles) error
}

func CacheKey(platform, videoId, variant string) string {
	return fmt.Sprintf("subtitles:%s:%s:%s", platform, videoId, variant)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*CachedSubtitles, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var v CachedSubtitles
	if err = json.Unmarshal(data, &v); err != nil {
		return nil, false, fmt.Errorf("decode cached subtitles: %w", err)
	}
	return &v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value *CachedSubtitles) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// NopCache is used when redis is not configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*CachedSubtitles, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, string, *CachedSubtitles) error          { return nil }
