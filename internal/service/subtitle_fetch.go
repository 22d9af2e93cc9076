package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"deja-vocab/internal/dto"
	"deja-vocab/internal/storage"
	"deja-vocab/internal/types"
	"deja-vocab/log"
	"deja-vocab/pkg/subtitle"
	"deja-vocab/pkg/util"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// 自动采集优先英文，没有英文时依次尝试中日韩
	autoFetchLanguages = []string{"en", "zh-Hans", "zh", "ja", "ko"}
	directLanguages    = []string{"en"}
)

const autoCacheVariant = "auto"

func toSubtitleItems(cues []types.MergedCue) []dto.SubtitleItem {
	return lo.Map(cues, func(c types.MergedCue, _ int) dto.SubtitleItem {
		return dto.SubtitleItem{StartTime: c.Start, EndTime: c.End, Text: c.Text}
	})
}

// runPipeline 非英文字幕只做时间轴修正和过滤，不做合并
func runPipeline(cfg subtitle.MergeConfig, tr *types.Transcript) (*subtitle.Result, error) {
	p := subtitle.NewPipeline(cfg)
	p.SkipMerge = !util.IsEnglish(tr.Language)
	return p.Run(tr.Records)
}

// AutoFetchSubtitles collects subtitles through the proxied source without saving them.
func (s *Service) AutoFetchSubtitles(ctx context.Context, rawUrl string) (*dto.AutoFetchSubtitlesResData, error) {
	videoId, err := util.GetYouTubeID(rawUrl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	key := storage.CacheKey(types.PlatformYoutube, videoId, autoCacheVariant)
	cached, ok, err := s.Cache.Get(ctx, key)
	if err != nil {
		log.GetLogger().Warn("AutoFetchSubtitles cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		log.GetLogger().Info("AutoFetchSubtitles cache hit", zap.String("videoId", videoId))
		return &dto.AutoFetchSubtitlesResData{
			VideoId:       cached.VideoId,
			Language:      cached.Language,
			Subtitles:     toSubtitleItems(cached.Cues),
			Merged:        cached.Merged,
			AutoCollected: true,
			Cached:        true,
		}, nil
	}

	log.GetLogger().Info("AutoFetchSubtitles start", zap.String("videoId", videoId))
	tr, err := s.ProxyYoutube.FetchTranscript(ctx, videoId, autoFetchLanguages)
	if err != nil {
		log.GetLogger().Error("AutoFetchSubtitles fetch transcript err", zap.String("videoId", videoId), zap.Error(err))
		return nil, fmt.Errorf("auto fetch subtitles %s: %w", videoId, err)
	}

	res, err := runPipeline(s.Profiles.Auto, tr)
	if err != nil {
		return nil, fmt.Errorf("auto fetch subtitles %s: %w", videoId, err)
	}
	merged := util.IsEnglish(tr.Language) && !res.Fallback
	log.GetLogger().Info("AutoFetchSubtitles done",
		zap.String("videoId", videoId),
		zap.String("language", tr.Language),
		zap.Int("raw", len(tr.Records)),
		zap.Int("filtered", len(res.Filtered)),
		zap.Int("merged", len(res.Merged)))

	if err = s.Cache.Set(ctx, key, &storage.CachedSubtitles{
		VideoId:   videoId,
		Language:  tr.Language,
		Generated: tr.Generated,
		Merged:    merged,
		Cues:      res.Merged,
	}); err != nil {
		log.GetLogger().Warn("AutoFetchSubtitles cache set failed", zap.String("key", key), zap.Error(err))
	}

	return &dto.AutoFetchSubtitlesResData{
		VideoId:       videoId,
		Language:      tr.Language,
		Subtitles:     toSubtitleItems(res.Merged),
		Merged:        merged,
		AutoCollected: true,
	}, nil
}

// FetchAndSaveSubtitles fetches English subtitles directly, merges them and stores them for the
// video. A video that already has subtitles is returned as is.
func (s *Service) FetchAndSaveSubtitles(ctx context.Context, req dto.FetchSubtitlesReq) (*dto.FetchSubtitlesResData, error) {
	videoId, err := util.GetYouTubeID(req.Url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	watchUrl := util.YouTubeWatchURL(videoId)

	title := util.CleanVideoTitle(req.Title)
	if title == "" {
		title = defaultVideoTitle(videoId)
	}
	video, created, err := s.Store.FindOrCreateVideo(ctx, &storage.Video{
		Platform: types.PlatformYoutube,
		VideoID:  videoId,
		URL:      watchUrl,
		Title:    title,
	})
	if err != nil {
		return nil, fmt.Errorf("find or create video %s: %w", videoId, err)
	}

	if !created {
		count, err := s.Store.CountSubtitles(ctx, video.ID)
		if err != nil {
			return nil, fmt.Errorf("count subtitles: %w", err)
		}
		if count > 0 {
			log.GetLogger().Info("FetchAndSaveSubtitles video already has subtitles", zap.String("videoId", videoId), zap.Int64("count", count))
			return &dto.FetchSubtitlesResData{
				VideoRefId:     video.ID,
				Url:            video.URL,
				Title:          video.Title,
				Language:       video.Language,
				SubtitlesCount: count,
				Existing:       true,
			}, nil
		}
	}

	tr, err := s.Youtube.FetchTranscript(ctx, videoId, directLanguages)
	if err != nil {
		log.GetLogger().Error("FetchAndSaveSubtitles fetch transcript err", zap.String("videoId", videoId), zap.Error(err))
		if created {
			if delErr := s.Store.DeleteVideo(ctx, video.ID); delErr != nil {
				log.GetLogger().Error("FetchAndSaveSubtitles delete video err", zap.Uint("id", video.ID), zap.Error(delErr))
			}
		}
		return nil, fmt.Errorf("fetch subtitles %s: %w", videoId, err)
	}

	res, err := subtitle.NewPipeline(s.Profiles.Direct).Run(tr.Records)
	if err != nil {
		return nil, fmt.Errorf("fetch subtitles %s: %w", videoId, err)
	}
	if err = s.Store.SaveSubtitles(ctx, video.ID, res.Merged); err != nil {
		return nil, err
	}
	if err = s.Store.UpdateVideoLanguage(ctx, video.ID, tr.Language); err != nil {
		log.GetLogger().Warn("FetchAndSaveSubtitles update language err", zap.Uint("id", video.ID), zap.Error(err))
	}
	log.GetLogger().Info("FetchAndSaveSubtitles saved",
		zap.String("videoId", videoId),
		zap.Bool("generated", tr.Generated),
		zap.Int("filtered", len(res.Filtered)),
		zap.Int("merged", len(res.Merged)),
		zap.Bool("fallback", res.Fallback))

	return &dto.FetchSubtitlesResData{
		VideoRefId:     video.ID,
		Url:            video.URL,
		Title:          video.Title,
		Language:       tr.Language,
		SubtitlesCount: int64(len(res.Merged)),
		Fallback:       res.Fallback,
	}, nil
}

// ResaveSubtitles re-fetches and re-merges stored YouTube videos in parallel. An empty id list
// re-saves every YouTube video. A failing video does not stop the others.
func (s *Service) ResaveSubtitles(ctx context.Context, videoRefIds []uint) (*dto.ResaveSubtitlesResData, error) {
	var videos []storage.Video
	if len(videoRefIds) == 0 {
		all, err := s.Store.ListVideos(ctx, types.PlatformYoutube)
		if err != nil {
			return nil, fmt.Errorf("list videos: %w", err)
		}
		videos = all
	} else {
		for _, id := range lo.Uniq(videoRefIds) {
			v, err := s.Store.GetVideo(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("get video %d: %w", id, err)
			}
			videos = append(videos, *v)
		}
	}

	parallelNum := s.ParallelNum
	if parallelNum <= 0 {
		parallelNum = 1
	}
	var (
		parallelControlChan = make(chan struct{}, parallelNum)
		resMu               sync.Mutex
		resData             = &dto.ResaveSubtitlesResData{Saved: []dto.ResaveItem{}, Failed: []dto.ResaveFailure{}}
	)
	eg, ctx := errgroup.WithContext(ctx)
	for _, videoItem := range videos {
		video := videoItem
		parallelControlChan <- struct{}{}
		eg.Go(func() error {
			defer func() {
				<-parallelControlChan
				if r := recover(); r != nil {
					log.GetLogger().Error("ResaveSubtitles panic recovered", zap.Any("panic", r), zap.String("stack", string(debug.Stack())))
					resMu.Lock()
					resData.Failed = append(resData.Failed, dto.ResaveFailure{VideoRefId: video.ID, Error: fmt.Sprintf("panic: %v", r)})
					resMu.Unlock()
				}
			}()
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item, err := s.resaveOne(ctx, video)
			resMu.Lock()
			defer resMu.Unlock()
			if err != nil {
				log.GetLogger().Error("ResaveSubtitles video err", zap.Uint("id", video.ID), zap.String("videoId", video.VideoID), zap.Error(err))
				resData.Failed = append(resData.Failed, dto.ResaveFailure{VideoRefId: video.ID, Error: err.Error()})
				return nil
			}
			resData.Saved = append(resData.Saved, *item)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("resave subtitles: %w", err)
	}
	log.GetLogger().Info("ResaveSubtitles done", zap.Int("saved", len(resData.Saved)), zap.Int("failed", len(resData.Failed)))
	return resData, nil
}

func (s *Service) resaveOne(ctx context.Context, video storage.Video) (*dto.ResaveItem, error) {
	if video.Platform != types.PlatformYoutube {
		return nil, fmt.Errorf("%w: video %d is not a youtube video", ErrInvalidRequest, video.ID)
	}
	tr, err := s.Youtube.FetchTranscript(ctx, video.VideoID, directLanguages)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	res, err := subtitle.NewPipeline(s.Profiles.Direct).Run(tr.Records)
	if err != nil {
		return nil, err
	}
	if err = s.Store.ReplaceSubtitles(ctx, video.ID, res.Merged); err != nil {
		return nil, err
	}
	if err = s.Store.UpdateVideoLanguage(ctx, video.ID, tr.Language); err != nil {
		return nil, err
	}
	return &dto.ResaveItem{
		VideoRefId:     video.ID,
		Language:       tr.Language,
		SubtitlesCount: len(res.Merged),
		Fallback:       res.Fallback,
	}, nil
}

func defaultVideoTitle(videoId string) string {
	return "YouTube Video " + videoId
}

// SaveSubtitles stores subtitles submitted by the browser extension. Duplicates by
// (start, end, text) are dropped and a video that already has subtitles is left untouched.
func (s *Service) SaveSubtitles(ctx context.Context, req dto.SaveSubtitlesReq) (*dto.SaveSubtitlesResData, error) {
	if req.VideoId == "" || len(req.Subtitles) == 0 {
		return nil, fmt.Errorf("%w: missing video_id or subtitles", ErrInvalidRequest)
	}
	videoId, err := util.GetYouTubeID(req.VideoId)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	title := util.CleanVideoTitle(req.VideoTitle)
	video, created, err := s.Store.FindOrCreateVideo(ctx, &storage.Video{
		Platform: types.PlatformYoutube,
		VideoID:  videoId,
		URL:      util.YouTubeWatchURL(videoId),
		Title:    lo.Ternary(title != "", title, defaultVideoTitle(videoId)),
	})
	if err != nil {
		return nil, fmt.Errorf("find or create video %s: %w", videoId, err)
	}
	// 之前只有默认标题，现在拿到了真实标题
	if !created && title != "" && video.Title == defaultVideoTitle(videoId) {
		if err = s.Store.UpdateVideoTitle(ctx, video.ID, title); err != nil {
			log.GetLogger().Warn("SaveSubtitles update title err", zap.Uint("id", video.ID), zap.Error(err))
		}
	}

	count, err := s.Store.CountSubtitles(ctx, video.ID)
	if err != nil {
		return nil, fmt.Errorf("count subtitles: %w", err)
	}
	if count > 0 {
		log.GetLogger().Info("SaveSubtitles video already has subtitles, skip", zap.String("videoId", videoId), zap.Int64("count", count))
		return &dto.SaveSubtitlesResData{VideoRefId: video.ID, Existing: count, Skipped: true}, nil
	}

	unique := lo.UniqBy(req.Subtitles, func(item dto.SubtitleItem) string {
		return fmt.Sprintf("%v_%v_%s", item.StartTime, item.EndTime, item.Text)
	})
	cues := lo.Map(unique, func(item dto.SubtitleItem, _ int) types.MergedCue {
		return types.MergedCue{Start: item.StartTime, End: item.EndTime, Text: item.Text}
	})
	if err = s.Store.SaveSubtitles(ctx, video.ID, cues); err != nil {
		return nil, err
	}
	return &dto.SaveSubtitlesResData{VideoRefId: video.ID, Saved: len(cues)}, nil
}

