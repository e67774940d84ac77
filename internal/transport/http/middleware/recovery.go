package middleware

import (
	"github.com/gin-gonic/gin"

	resp "taskboard/internal/transport/http/response"
)

// PanicResponse 交给 ginzap.CustomRecoveryWithZap：日志与堆栈由 ginzap 记录，这里只回信封
func PanicResponse(c *gin.Context, _ any) {
	resp.Abort(c, resp.CodeServerError, "internal error", nil)
}
