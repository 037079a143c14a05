package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/SayemTaher/university-management-server/pkg/errors"
	"github.com/SayemTaher/university-management-server/pkg/response"
)

// Recovery 捕获 panic，记录堆栈并输出统一错误响应（500）
func Recovery(renderer *response.Renderer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("请求处理 panic",
					zap.String("request_id", c.GetString(RequestIDKey)),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				renderer.Error(c, apperrors.Internal(fmt.Errorf("panic: %v", r)))
			}
		}()

		c.Next()
	}
}
