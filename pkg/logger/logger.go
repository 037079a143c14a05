package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/SayemTaher/university-management-server/config"
)

// NewLogger 根据配置初始化 Zap 日志实例
// 生产环境强制 JSON 输出；每条日志附带 app / env 字段
func NewLogger(cfg *config.LogConfig, app *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	switch {
	case cfg.Format == "console" && !app.IsProduction():
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "time"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build(zap.Fields(
		zap.String("app", app.Name),
		zap.String("env", app.Env),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}
