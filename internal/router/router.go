package router

import (
	"net/http"

	"deja-vocab/internal/handler"

	"github.com/gin-gonic/gin"
)

func SetupRouter(r *gin.Engine, hdl *handler.Handler) {
	r.Use(handler.RequestLogger())

	api := r.Group("/api")
	{
		api.GET("/subtitles/auto", hdl.AutoFetchSubtitles)
		api.POST("/subtitles", hdl.SaveSubtitles)
		api.POST("/videos/subtitles", hdl.FetchAndSaveSubtitles)
		api.POST("/videos/subtitles/resave", hdl.ResaveSubtitles)
		api.GET("/videos/:id/subtitles", hdl.GetVideoSubtitles)
		api.POST("/videos/:id/chat", hdl.ChatAboutVideo)
		api.POST("/bilibili/subtitles", hdl.SaveBilibiliSubtitles)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
