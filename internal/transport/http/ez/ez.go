// Package ez 把 handler 写成 func(ctx, 调用方, 入参) (出参, error)，
// 绑定、鉴权、错误映射与响应信封统一在这里处理。
package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	mdw "taskboard/internal/transport/http/middleware"
	resp "taskboard/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/boards/:id/columns"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求已认证（分组上需挂 middleware.Auth）
	Roles   []string // 限定角色（可选）
	Handler func(c *gin.Context, who domain.Identity, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		who, ok := mdw.Identity(c)
		if a.Auth && !ok {
			resp.Abort(c, resp.CodeUnauthorized, "unauthorized", nil)
			return
		}
		if len(a.Roles) > 0 && !hasRole(who.Role, a.Roles) {
			resp.Abort(c, resp.CodeForbidden, "forbidden", nil)
			return
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default:
		}
		if bindErr != nil {
			failBind(c, bindErr)
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, who, &in)
		if err != nil {
			Fail(c, err)
			return
		}
		resp.Success(c, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// Fail 业务错误 → HTTP 状态 + 信封；Internal 的细节只进访问日志
func Fail(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindInternal {
		_ = c.Error(err)
		resp.Abort(c, resp.CodeServerError, "internal error", nil)
		return
	}
	resp.Abort(c, de.Kind.HTTPStatus(), de.Msg, de.Details)
}

func failBind(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		resp.Abort(c, resp.CodeTooLarge, "request body too large", nil)
		return
	}
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	resp.Abort(c, resp.CodeBadRequest, "invalid request body", nil)
}
