package storage

import (
	"context"
	"path/filepath"
	"testing"

	"deja-vocab/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_VideoLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	v, created, err := s.FindOrCreateVideo(ctx, &Video{Platform: types.PlatformYoutube, VideoID: "CuxmTJqpc0U", Title: "intro"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, v.ID)

	again, created, err := s.FindOrCreateVideo(ctx, &Video{Platform: types.PlatformYoutube, VideoID: "CuxmTJqpc0U", Title: "other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, v.ID, again.ID)
	assert.Equal(t, "intro", again.Title)

	_, _, err = s.FindOrCreateVideo(ctx, &Video{Platform: types.PlatformBilibili, VideoID: "CuxmTJqpc0U"})
	require.NoError(t, err)

	yt, err := s.ListVideos(ctx, types.PlatformYoutube)
	require.NoError(t, err)
	assert.Len(t, yt, 1)
	all, err := s.ListVideos(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.SaveSubtitles(ctx, v.ID, []types.MergedCue{{Start: 0, End: 1, Text: "a"}}))
	require.NoError(t, s.DeleteVideo(ctx, v.ID))
	_, err = s.GetVideo(ctx, v.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	n, err := s.CountSubtitles(ctx, v.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.FindVideo(ctx, types.PlatformYoutube, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Subtitles(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	v, _, err := s.FindOrCreateVideo(ctx, &Video{Platform: types.PlatformYoutube, VideoID: "HP7JOkeZ0Yg"})
	require.NoError(t, err)

	var cues []types.MergedCue
	for i := 0; i < 450; i++ {
		cues = append(cues, types.MergedCue{Start: float64(i), End: float64(i) + 0.5, Text: "line"})
	}
	// 倒序写入，读取时按开始时间排序
	reversed := make([]types.MergedCue, len(cues))
	for i := range cues {
		reversed[i] = cues[len(cues)-1-i]
	}
	require.NoError(t, s.SaveSubtitles(ctx, v.ID, reversed))
	require.NoError(t, s.SaveSubtitles(ctx, v.ID, nil))

	n, err := s.CountSubtitles(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(450), n)

	subs, err := s.ListSubtitles(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, cues, ToMergedCues(subs))

	replacement := []types.MergedCue{{Start: 0, End: 2, Text: "merged line"}}
	require.NoError(t, s.ReplaceSubtitles(ctx, v.ID, replacement))
	subs, err = s.ListSubtitles(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, replacement, ToMergedCues(subs))

	require.NoError(t, s.UpdateVideoLanguage(ctx, v.ID, "en"))
	got, err := s.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "en", got.Language)
}
