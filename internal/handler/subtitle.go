package handler

import (
	"errors"
	"net/http"
	"strconv"

	"deja-vocab/internal/dto"
	"deja-vocab/internal/response"
	"deja-vocab/internal/service"
	"deja-vocab/internal/storage"
	"deja-vocab/log"
	"deja-vocab/pkg/subtitle"
	"deja-vocab/pkg/youtube"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func errorStatus(err error) int {
	var malformed *subtitle.MalformedCueError
	switch {
	case errors.Is(err, service.ErrInvalidURL), errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, youtube.ErrNoTranscript),
		errors.Is(err, youtube.ErrTranscriptsDisabled):
		return http.StatusNotFound
	case errors.Is(err, service.ErrChatUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &malformed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.String("requestId", c.GetString("requestId")), zap.Error(err))
	}
	response.Fail(c, status, err.Error())
}

func videoRefId(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusBadRequest, "参数错误: id")
		return 0, false
	}
	return uint(id), true
}

func (h Handler) AutoFetchSubtitles(c *gin.Context) {
	var req dto.AutoFetchSubtitlesReq
	if err := c.ShouldBindQuery(&req); err != nil || req.Url == "" {
		response.Fail(c, http.StatusBadRequest, "参数错误: 缺少url")
		return
	}
	data, err := h.Service.AutoFetchSubtitles(c.Request.Context(), req.Url)
	if err != nil {
		fail(c, err)
		return
	}
	response.R(c, data)
}

func (h Handler) FetchAndSaveSubtitles(c *gin.Context) {
	var req dto.FetchSubtitlesReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Url == "" {
		response.Fail(c, http.StatusBadRequest, "参数错误: 缺少url")
		return
	}
	data, err := h.Service.FetchAndSaveSubtitles(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.R(c, data)
}

func (h Handler) SaveSubtitles(c *gin.Context) {
	var req dto.SaveSubtitlesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误")
		return
	}
	data, err := h.Service.SaveSubtitles(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.R(c, data)
}

func (h Handler) ResaveSubtitles(c *gin.Context) {
	var req dto.ResaveSubtitlesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误")
		return
	}
	data, err := h.Service.ResaveSubtitles(c.Request.Context(), req.VideoIds)
	if err != nil {
		fail(c, err)
		return
	}
	response.R(c, data)
}

func (h Handler) SaveBilibiliSubtitles(c *gin.Context) {
	var req dto.BilibiliSubtitlesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误")
		return
	}
	data, err := h.Service.SaveBilibiliSubtitles(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.R(c, data)
}

func (h Handler) GetVideoSubtitles(c *gin.Context) {
	id, ok := videoRefId(c)
	if !ok {
		return
	}
	data, err := h.Service.GetVideoSubtitles(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.R(c, data)
}

func (h Handler) ChatAboutVideo(c *gin.Context) {
	id, ok := videoRefId(c)
	if !ok {
		return
	}
	var req dto.VideoChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误")
		return
	}
	data, err := h.Service.ChatAboutVideo(c.Request.Context(), id, req.Question)
	if err != nil {
		fail(c, err)
		return
	}
	response.R(c, data)
}
