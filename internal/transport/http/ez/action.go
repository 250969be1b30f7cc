// Package ez registers typed gin handlers ("actions") with one call and maps
// their errors onto the response envelope.
package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"go-gin-order-service/internal/domain"
	resp "go-gin-order-service/internal/transport/http/response"
	"go-gin-order-service/pkg/validation"
)

// KeyRequestID 与 middleware.RequestID 写入的 key 一致
const KeyRequestID = "X-Request-ID"

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// Group returns an EZ on a sub group of e.
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), log: e.log}
}

// 绑定方式
type Binder string

const (
	BindJSON     Binder = "json"      // 从 JSON 绑定
	BindQuery    Binder = "query"     // 从 URL ?a=b 绑定
	BindURI      Binder = "uri"       // 从路径参数绑定
	BindURIQuery Binder = "uri+query" // 路径参数 + query 一起绑定后统一校验
	BindNone     Binder = "none"      // 不绑定
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // 例："/auth/login"、"/orders/:id/status"
	Binder  Binder
	Status  int // 成功状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction mounts a on e.
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			BadRequest(c, err)
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, e.log, err)
			return
		}
		c.JSON(status, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

func bind(c *gin.Context, b Binder, in any) error {
	switch b {
	case BindJSON:
		return c.ShouldBindJSON(in)
	case BindQuery:
		return c.ShouldBindQuery(in)
	case BindURI:
		return c.ShouldBindUri(in)
	case BindURIQuery:
		// 分别映射，最后统一校验，避免单独绑定时 required 误报
		params := make(map[string][]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = []string{p.Value}
		}
		if err := binding.MapFormWithTag(in, params, "uri"); err != nil {
			return err
		}
		if err := binding.MapFormWithTag(in, c.Request.URL.Query(), "form"); err != nil {
			return err
		}
		return binding.Validator.ValidateStruct(in)
	default: // BindNone
		return nil
	}
}

// BadRequest answers a binding failure with per-field details.
func BadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		resp.ErrorWithData(resp.CodeBadRequest, "invalid request", validation.ToDetails(err)))
}

// Fail 统一错误映射：业务错误透出 msg，其余一律 500 且只记日志
func Fail(c *gin.Context, l *zap.Logger, err error) {
	code := CodeOf(err)
	if code == resp.CodeServerError {
		l.Error("request failed",
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "internal error"))
		return
	}
	c.AbortWithStatusJSON(resp.HTTPStatus(code), resp.Error(code, Message(err)))
}

// CodeOf maps err onto a response code.
func CodeOf(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrNotFound:
		return resp.CodeNotFound
	case domain.ErrAlreadyExists, domain.ErrOutOfStock:
		return resp.CodeConflict
	case domain.ErrUnauthorized:
		return resp.CodeUnauthorized
	case domain.ErrForbidden:
		return resp.CodeForbidden
	case domain.ErrInvalidArgument:
		return resp.CodeBadRequest
	default:
		return resp.CodeServerError
	}
}

// Message is the caller-safe text of a domain error.
func Message(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Error()
	}
	if k := domain.KindOf(err); k != nil {
		return k.Error()
	}
	return "internal error"
}
