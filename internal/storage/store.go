package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deja-vocab/internal/types"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("record not found")

const saveBatchSize = 200

type Video struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Platform  string     `gorm:"size:16;uniqueIndex:idx_platform_video" json:"platform"`
	VideoID   string     `gorm:"size:64;uniqueIndex:idx_platform_video" json:"video_id"`
	URL       string     `json:"url"`
	Title     string     `json:"title"`
	Language  string     `gorm:"size:16" json:"language"`
	CreatedAt time.Time  `json:"created_at"`
	Subtitles []Subtitle `gorm:"foreignKey:VideoRefID" json:"-"`
}

type Subtitle struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	VideoRefID uint    `gorm:"index" json:"video_ref_id"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Text       string  `json:"text"`
}

type Store struct {
	db *gorm.DB
}

// Open 打开sqlite数据库并自动迁移表结构，文件所在目录不存在时会创建
func Open(dsn string) (*Store, error) {
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", dsn, err)
	}
	if err = db.AutoMigrate(&Video{}, &Subtitle{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) FindVideo(ctx context.Context, platform, videoId string) (*Video, error) {
	var v Video
	err := s.db.WithContext(ctx).Where("platform = ? AND video_id = ?", platform, videoId).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindOrCreateVideo returns the stored video for v's platform and video id, creating it from v
// when absent. created reports whether a new row was inserted.
func (s *Store) FindOrCreateVideo(ctx context.Context, v *Video) (video *Video, created bool, err error) {
	existing, err := s.FindVideo(ctx, v.Platform, v.VideoID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if err = s.db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, false, fmt.Errorf("create video: %w", err)
	}
	return v, true, nil
}

func (s *Store) GetVideo(ctx context.Context, id uint) (*Video, error) {
	var v Video
	err := s.db.WithContext(ctx).First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVideos lists videos by id. An empty platform lists every platform.
func (s *Store) ListVideos(ctx context.Context, platform string) ([]Video, error) {
	var videos []Video
	q := s.db.WithContext(ctx).Order("id")
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}
	if err := q.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (s *Store) UpdateVideoTitle(ctx context.Context, id uint, title string) error {
	return s.db.WithContext(ctx).Model(&Video{}).Where("id = ?", id).Update("title", title).Error
}

func (s *Store) UpdateVideoLanguage(ctx context.Context, id uint, language string) error {
	return s.db.WithContext(ctx).Model(&Video{}).Where("id = ?", id).Update("language", language).Error
}

// DeleteVideo removes the video and its subtitles.
func (s *Store) DeleteVideo(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_ref_id = ?", id).Delete(&Subtitle{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Video{}, id).Error
	})
}

func (s *Store) CountSubtitles(ctx context.Context, videoRefId uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Subtitle{}).Where("video_ref_id = ?", videoRefId).Count(&n).Error
	return n, err
}

func toRows(videoRefId uint, cues []types.MergedCue) []Subtitle {
	return lo.Map(cues, func(c types.MergedCue, _ int) Subtitle {
		return Subtitle{VideoRefID: videoRefId, StartTime: c.Start, EndTime: c.End, Text: c.Text}
	})
}

// SaveSubtitles bulk inserts cues for a video.
func (s *Store) SaveSubtitles(ctx context.Context, videoRefId uint, cues []types.MergedCue) error {
	if len(cues) == 0 {
		return nil
	}
	rows := toRows(videoRefId, cues)
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, saveBatchSize).Error; err != nil {
		return fmt.Errorf("save subtitles: %w", err)
	}
	return nil
}

// ReplaceSubtitles swaps the stored subtitles of a video in one transaction.
func (s *Store) ReplaceSubtitles(ctx context.Context, videoRefId uint, cues []types.MergedCue) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_ref_id = ?", videoRefId).Delete(&Subtitle{}).Error; err != nil {
			return fmt.Errorf("delete subtitles: %w", err)
		}
		if len(cues) == 0 {
			return nil
		}
		rows := toRows(videoRefId, cues)
		if err := tx.CreateInBatches(&rows, saveBatchSize).Error; err != nil {
			return fmt.Errorf("insert subtitles: %w", err)
		}
		return nil
	})
}

func (s *Store) ListSubtitles(ctx context.Context, videoRefId uint) ([]Subtitle, error) {
	var subs []Subtitle
	err := s.db.WithContext(ctx).
		Where("video_ref_id = ?", videoRefId).
		Order("start_time, id").
		Find(&subs).Error
	return subs, err
}

func ToMergedCues(subs []Subtitle) []types.MergedCue {
	return lo.Map(subs, func(s Subtitle, _ int) types.MergedCue {
		return types.MergedCue{Start: s.StartTime, End: s.EndTime, Text: s.Text}
	})
}
