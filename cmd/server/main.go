package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SayemTaher/university-management-server/config"
	"github.com/SayemTaher/university-management-server/internal/api/handler"
	"github.com/SayemTaher/university-management-server/internal/api/router"
	"github.com/SayemTaher/university-management-server/internal/metrics"
	"github.com/SayemTaher/university-management-server/internal/repository"
	"github.com/SayemTaher/university-management-server/internal/service"
	"github.com/SayemTaher/university-management-server/pkg/database"
	applogger "github.com/SayemTaher/university-management-server/pkg/logger"
	"github.com/SayemTaher/university-management-server/pkg/redis"
	"github.com/SayemTaher/university-management-server/pkg/response"
)

// registrationLockTTL Redis 注册创建锁的自动过期时间
const registrationLockTTL = 10 * time.Second

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("UMS_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log, &cfg.App)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：未启用或连接失败时使用进程内锁，限流放行）
	var rdb *redis.Client
	var locker service.Locker
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，注册创建锁降级为进程内锁，限流不可用", zap.Error(err))
			rdb = nil
		} else {
			locker = service.NewRedisLocker(rdb, registrationLockTTL)
		}
	}

	// 5. 依赖注入: Repository → Service → Handler
	m := metrics.New()
	renderer := response.NewRenderer(cfg.App.IsProduction())
	repo := repository.NewRepository(db, &cfg.Query)
	svc := service.NewService(cfg, repo, locker, m, logger)
	h := handler.NewHandler(svc, renderer)

	// 6. 初始化路由
	engine := router.Setup(router.Deps{
		Config:   cfg,
		Handler:  h,
		Renderer: renderer,
		Metrics:  m,
		DB:       db,
		Redis:    rdb,
		Logger:   logger,
	})

	// 7. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("关闭 Redis 连接失败", zap.Error(err))
		}
	}

	logger.Info("服务器已关闭")
}
