package service

import (
	"errors"

	"deja-vocab/config"
	"deja-vocab/internal/storage"
	"deja-vocab/internal/types"
	"deja-vocab/log"
	"deja-vocab/pkg/bilibili"
	"deja-vocab/pkg/openai"
	"deja-vocab/pkg/subtitle"
	"deja-vocab/pkg/youtube"

	"go.uber.org/zap"
)

var (
	ErrInvalidURL      = errors.New("invalid video url")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrChatUnavailable = errors.New("chat is not configured")
)

// MergeProfiles 三个入口各自的合并阈值
type MergeProfiles struct {
	Default subtitle.MergeConfig
	Direct  subtitle.MergeConfig
	Auto    subtitle.MergeConfig
}

type Service struct {
	Store *storage.Store
	Cache storage.SubtitleCache
	// Youtube 直连获取，ProxyYoutube 经代理获取（自动采集入口）
	Youtube       types.TranscriptFetcher
	ProxyYoutube  types.TranscriptFetcher
	Bilibili      types.BilibiliFetcher
	ChatCompleter types.ChatCompleter
	Profiles      MergeProfiles
	ParallelNum   int
	ContextLimit  int
}

func mergeConfig(p config.MergeProfile) subtitle.MergeConfig {
	return subtitle.MergeConfig{MaxGap: p.MaxGap, MaxDuration: p.MaxDuration, MaxChars: p.MaxChars}
}

func ProfilesFromConfig(m config.Merge) MergeProfiles {
	return MergeProfiles{
		Default: mergeConfig(m.Default),
		Direct:  mergeConfig(m.Direct),
		Auto:    mergeConfig(m.Auto),
	}
}

func NewService(store *storage.Store, cache storage.SubtitleCache) *Service {
	if cache == nil {
		cache = storage.NopCache{}
	}

	var chatCompleter types.ChatCompleter
	if config.Conf.Llm.ApiKey != "" {
		chatCompleter = openai.NewClient(config.Conf.Llm.BaseUrl, config.Conf.Llm.ApiKey, config.Conf.Llm.Model, config.Conf.App.ParsedProxy)
		log.GetLogger().Info("LLM Model： ", zap.String("llm", config.Conf.Llm.Model))
	} else {
		log.GetLogger().Warn("未配置LLM api key，视频问答不可用")
	}

	if config.Conf.App.Proxy == "" {
		log.GetLogger().Info("未配置代理，自动采集将直连YouTube")
	}

	return &Service{
		Store:         store,
		Cache:         cache,
		Youtube:       youtube.NewClient(config.Conf.Youtube.BaseUrl, ""),
		ProxyYoutube:  youtube.NewClient(config.Conf.Youtube.BaseUrl, config.Conf.App.Proxy),
		Bilibili:      bilibili.NewClient(""),
		ChatCompleter: chatCompleter,
		Profiles:      ProfilesFromConfig(config.Conf.Merge),
		ParallelNum:   config.Conf.App.ResaveParallelNum,
		ContextLimit:  config.Conf.App.ContextSubtitleLimit,
	}
}
