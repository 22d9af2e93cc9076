package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Error int32  `json:"error"`
	Msg   string `json:"msg"`
	Data  any    `json:"data"`
}

func R(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Error: 0, Msg: "成功", Data: data})
}

// Fail 错误响应同样保持 {error, msg, data} 结构
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Error: -1, Msg: msg, Data: nil})
}
