package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/recurse-backend-go/internal/api"
	"github.com/jengzang/recurse-backend-go/internal/config"
	"github.com/jengzang/recurse-backend-go/internal/database"
	"github.com/jengzang/recurse-backend-go/internal/logger"
)

func main() {
	// 加载配置
	cfg := config.Load()

	if err := logger.Init(cfg.LogDebug); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if !cfg.LogDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	dbConfig := database.Config{
		Path: cfg.DBPath,
	}
	if err := database.Init(dbConfig); err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	defer database.Close()

	// 初始化路由
	server := api.SetupRouter(cfg, database.GetDB())
	defer server.Close()

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: server.Engine,
	}

	// 启动服务器
	go func() {
		logger.Infow("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infow("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("Server shutdown failed", "error", err)
	}
}
