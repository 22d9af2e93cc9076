package storage

import (
	"context"
	"testing"
	"time"

	"deja-vocab/internal/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	c := NewRedisCache(client, 30*time.Minute)
	key := CacheKey(types.PlatformYoutube, "CuxmTJqpc0U", "auto")
	assert.Equal(t, "subtitles:youtube:CuxmTJqpc0U:auto", key)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := &CachedSubtitles{
		VideoId:  "CuxmTJqpc0U",
		Language: "en",
		Merged:   true,
		Cues:     []types.MergedCue{{Start: 0, End: 3.5, Text: "hello world"}},
	}
	require.NoError(t, c.Set(ctx, key, want))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	mr.FastForward(31 * time.Minute)
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNopCache(t *testing.T) {
	var c SubtitleCache = NopCache{}
	require.NoError(t, c.Set(context.Background(), "k", &CachedSubtitles{}))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
