package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deja-vocab/config"
	"deja-vocab/internal/handler"
	"deja-vocab/internal/router"
	"deja-vocab/internal/service"
	"deja-vocab/internal/storage"
	"deja-vocab/log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newCache() storage.SubtitleCache {
	if config.Conf.Redis.Addr == "" {
		log.GetLogger().Info("未配置redis，不缓存自动采集的字幕")
		return storage.NopCache{}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Conf.Redis.Addr,
		Password: config.Conf.Redis.Password,
		DB:       config.Conf.Redis.Db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.GetLogger().Warn("redis不可用，不缓存自动采集的字幕", zap.String("addr", config.Conf.Redis.Addr), zap.Error(err))
		_ = rdb.Close()
		return storage.NopCache{}
	}
	return storage.NewRedisCache(rdb, time.Duration(config.Conf.Redis.TtlMinutes)*time.Minute)
}

func main() {
	if err := config.LoadConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "加载配置失败:", err)
		os.Exit(1)
	}
	if err := log.InitLogger(config.Conf.App.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "初始化日志失败:", err)
		os.Exit(1)
	}
	defer log.GetLogger().Sync()

	store, err := storage.Open(config.Conf.Storage.Dsn)
	if err != nil {
		log.GetLogger().Fatal("打开数据库失败", zap.Error(err))
	}
	defer store.Close()

	svc := service.NewService(store, newCache())

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	router.SetupRouter(r, handler.NewHandler(svc))

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.GetLogger().Info("服务启动", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.GetLogger().Fatal("服务启动失败", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.GetLogger().Error("服务关闭失败", zap.Error(err))
	}
	log.GetLogger().Info("服务已关闭")
}
