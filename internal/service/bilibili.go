package service

import (
	"context"
	"fmt"
	"strings"

	"deja-vocab/internal/dto"
	"deja-vocab/internal/storage"
	"deja-vocab/internal/types"
	"deja-vocab/log"
	"deja-vocab/pkg/util"

	"go.uber.org/zap"
)

// SaveBilibiliSubtitles 获取B站字幕并替换已保存的字幕，只有英文字幕会做合并
func (s *Service) SaveBilibiliSubtitles(ctx context.Context, req dto.BilibiliSubtitlesReq) (*dto.BilibiliSubtitlesResData, error) {
	if strings.TrimSpace(req.SubtitleUrl) == "" || strings.TrimSpace(req.VideoId) == "" {
		return nil, fmt.Errorf("%w: missing subtitle_url or video_id", ErrInvalidRequest)
	}

	tr, err := s.Bilibili.FetchSubtitle(ctx, req.SubtitleUrl)
	if err != nil {
		log.GetLogger().Error("SaveBilibiliSubtitles fetch err", zap.String("videoId", req.VideoId), zap.Error(err))
		return nil, fmt.Errorf("fetch bilibili subtitle: %w", err)
	}
	tr.VideoId = req.VideoId
	tr.Language = req.Language

	res, err := runPipeline(s.Profiles.Default, tr)
	if err != nil {
		return nil, fmt.Errorf("bilibili subtitle %s: %w", req.VideoId, err)
	}

	title := util.CleanVideoTitle(req.Title)
	if title == "" {
		title = "Bilibili Video " + req.VideoId
	}
	video, _, err := s.Store.FindOrCreateVideo(ctx, &storage.Video{
		Platform: types.PlatformBilibili,
		VideoID:  req.VideoId,
		URL:      "https://www.bilibili.com/video/" + req.VideoId,
		Title:    title,
		Language: req.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("find or create video %s: %w", req.VideoId, err)
	}
	if err = s.Store.ReplaceSubtitles(ctx, video.ID, res.Merged); err != nil {
		return nil, err
	}

	merged := util.IsEnglish(req.Language) && !res.Fallback
	log.GetLogger().Info("SaveBilibiliSubtitles saved",
		zap.String("videoId", req.VideoId),
		zap.String("language", req.Language),
		zap.Int("filtered", len(res.Filtered)),
		zap.Int("saved", len(res.Merged)),
		zap.Bool("merged", merged))

	return &dto.BilibiliSubtitlesResData{
		VideoRefId:     video.ID,
		Language:       req.Language,
		Merged:         merged,
		SubtitlesCount: len(res.Merged),
		Subtitles:      toSubtitleItems(res.Merged),
	}, nil
}
