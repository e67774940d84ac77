package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	resp "taskboard/internal/transport/http/response"
)

const (
	KeyIdentity = "identity"
	KeyUserID   = "userId"
	KeyRole     = "role"
)

// TokenVerifier 由 AuthService 实现
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Identity, error)
}

// Auth 校验 Bearer 令牌，把调用方身份放进 gin.Context；requireRole 非空时再校验角色
func Auth(v TokenVerifier, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token", nil)
			return
		}
		id, err := v.Verify(c.Request.Context(), strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			if domain.KindOf(err) == domain.KindUnauthenticated {
				resp.Abort(c, resp.CodeUnauthorized, err.Error(), nil)
				return
			}
			_ = c.Error(err)
			resp.Abort(c, resp.CodeServerError, "internal error", nil)
			return
		}
		if requireRole != "" && id.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "forbidden", nil)
			return
		}
		c.Set(KeyIdentity, id)
		c.Set(KeyUserID, id.UserID)
		c.Set(KeyRole, id.Role)
		c.Next()
	}
}

// Identity 取出 Auth 写入的调用方
func Identity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}
