package service

import (
	"context"
	"fmt"
	"strings"

	"deja-vocab/internal/dto"
	"deja-vocab/internal/storage"
	"deja-vocab/internal/types"
	"deja-vocab/log"
	"deja-vocab/pkg/subtitle"

	"go.uber.org/zap"
)

func toVideoInfo(v *storage.Video) *dto.VideoInfo {
	return &dto.VideoInfo{
		Id:       v.ID,
		Platform: v.Platform,
		VideoId:  v.VideoID,
		Url:      v.URL,
		Title:    v.Title,
		Language: v.Language,
	}
}

func (s *Service) GetVideoSubtitles(ctx context.Context, videoRefId uint) (*dto.GetVideoSubtitlesResData, error) {
	video, err := s.Store.GetVideo(ctx, videoRefId)
	if err != nil {
		return nil, fmt.Errorf("get video %d: %w", videoRefId, err)
	}
	subs, err := s.Store.ListSubtitles(ctx, videoRefId)
	if err != nil {
		return nil, fmt.Errorf("list subtitles: %w", err)
	}
	return &dto.GetVideoSubtitlesResData{
		Video:     toVideoInfo(video),
		Subtitles: toSubtitleItems(storage.ToMergedCues(subs)),
	}, nil
}

// ChatAboutVideo answers a question with the stored subtitles of the video as context.
func (s *Service) ChatAboutVideo(ctx context.Context, videoRefId uint, question string) (*dto.VideoChatResData, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", ErrInvalidRequest)
	}
	if s.ChatCompleter == nil {
		return nil, ErrChatUnavailable
	}

	video, err := s.Store.GetVideo(ctx, videoRefId)
	if err != nil {
		return nil, fmt.Errorf("get video %d: %w", videoRefId, err)
	}
	subs, err := s.Store.ListSubtitles(ctx, videoRefId)
	if err != nil {
		return nil, fmt.Errorf("list subtitles: %w", err)
	}

	limit := s.ContextLimit
	if limit <= 0 {
		limit = subtitle.DefaultContextLimit
	}
	videoContext := subtitle.FormatContext(video.Title, video.VideoID, storage.ToMergedCues(subs), limit)
	query := videoContext + "\nUSER QUESTION: " + question

	answer, err := s.ChatCompleter.ChatCompletion(ctx, types.VideoAssistantSystemPrompt, query)
	if err != nil {
		log.GetLogger().Error("ChatAboutVideo chat completion err", zap.Uint("id", videoRefId), zap.Error(err))
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	return &dto.VideoChatResData{Answer: answer}, nil
}
