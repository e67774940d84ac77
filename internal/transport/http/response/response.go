package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Success 200 + 信封
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, OK(data))
}

// Abort 以 code 作为 HTTP 状态中止请求；details 放进 data
func Abort(c *gin.Context, code int, msg string, details interface{}) {
	r := Error(code, msg)
	if details != nil {
		r.Data = details
	}
	c.AbortWithStatusJSON(code, r)
}
