package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SayemTaher/university-management-server/config"
	"github.com/SayemTaher/university-management-server/internal/api/handler"
	"github.com/SayemTaher/university-management-server/internal/api/middleware"
	"github.com/SayemTaher/university-management-server/internal/metrics"
	"github.com/SayemTaher/university-management-server/pkg/redis"
	"github.com/SayemTaher/university-management-server/pkg/response"
)

// Deps 路由依赖；DB / Redis / Metrics 可为 nil
type Deps struct {
	Config   *config.Config
	Handler  *handler.Handler
	Renderer *response.Renderer
	Metrics  *metrics.Metrics
	DB       *gorm.DB
	Redis    *redis.Client
	Logger   *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	if d.Config.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(d.Renderer, d.Logger))
	r.Use(middleware.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(d.Config.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(d.Config.Server.BodyLimit, d.Renderer))

	r.NoRoute(func(c *gin.Context) {
		d.Renderer.Status(c, http.StatusNotFound, "API Not Found")
	})
	r.NoMethod(func(c *gin.Context) {
		d.Renderer.Status(c, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	// ── 健康检查 / 指标 ──
	r.GET("/health", health(d))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(d.Redis, d.Config.Server.RateLimit.Limit, d.Config.Server.RateLimit.Window, d.Renderer, d.Logger))
	{
		h := d.Handler

		// 学年学期模块
		semesters := v1.Group("/academic-semesters")
		{
			semesters.POST("", h.AcademicSemester.CreateAcademicSemester)
			semesters.GET("", h.AcademicSemester.ListAcademicSemesters)
			semesters.GET("/:id", h.AcademicSemester.GetAcademicSemester)
			semesters.PATCH("/:id", h.AcademicSemester.UpdateAcademicSemester)
		}

		// 学期注册模块
		registrations := v1.Group("/semester-registrations")
		{
			registrations.POST("", h.SemesterRegistration.CreateSemesterRegistration)
			registrations.GET("", h.SemesterRegistration.ListSemesterRegistrations)
			registrations.GET("/export", h.Export.ExportRegistrations)
			registrations.GET("/calendar.ics", h.Export.RegistrationCalendar)
			registrations.GET("/:id", h.SemesterRegistration.GetSemesterRegistration)
			registrations.PATCH("/:id", h.SemesterRegistration.UpdateSemesterRegistration)
		}
	}

	return r
}

// health 检查数据库与（启用时）Redis 连通性
func health(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{}
		healthy := true

		if d.DB != nil {
			checks["database"] = "ok"
			sqlDB, err := d.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				d.Logger.Warn("数据库健康检查失败", zap.Error(err))
				checks["database"] = "unavailable"
				healthy = false
			}
		}
		if d.Redis != nil {
			checks["redis"] = "ok"
			if err := d.Redis.Ping(ctx); err != nil {
				d.Logger.Warn("Redis 健康检查失败", zap.Error(err))
				checks["redis"] = "unavailable"
				healthy = false
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"success": healthy, "message": "health check", "data": checks})
	}
}
