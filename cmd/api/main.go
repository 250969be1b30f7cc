package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-order-service/internal/app"
	"go-gin-order-service/internal/core/config"
	"go-gin-order-service/internal/core/logger"
	"go-gin-order-service/internal/core/server"
	"go-gin-order-service/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 数据库 / 缓存 / 邮件 / 默认账号（失败直接 Fatal）
	a, closeApp, err := app.Bootstrap(ctx, cfg, log)
	if err != nil {
		closeApp()
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer closeApp()

	// 吊销表清理只在用户端进程里跑
	a.Sweeper.Start(ctx)
	defer a.Sweeper.Stop()

	// 路由（用户端）
	r := router.NewAPIEngine(a.RouterDeps())

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	if std, err := logger.ToStdLogger(log, zapcore.ErrorLevel); err == nil {
		srv.ErrorLog = std
	}

	// 启动日志
	baseURL := server.BaseURL(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()
	log.Info("user api started SUCCESS")

	// 优雅关闭
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("user api stopped gracefully")
}
