package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/recurse-backend-go/internal/analysis"
	"github.com/jengzang/recurse-backend-go/internal/config"
	"github.com/jengzang/recurse-backend-go/internal/handler"
	"github.com/jengzang/recurse-backend-go/internal/middleware"
	"github.com/jengzang/recurse-backend-go/internal/repository"
	"github.com/jengzang/recurse-backend-go/internal/service"
)

// Server 持有路由及需要在退出时停止的组件
type Server struct {
	Engine  *gin.Engine
	Tasks   *service.AnalysisTaskService
	limiter *middleware.RateLimiter
}

// Close 取消后台任务并停止限流清理
func (s *Server) Close() {
	s.Tasks.Shutdown()
	s.limiter.Stop()
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *sql.DB) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	r.Use(middleware.RateLimit(limiter))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Recurse Backend API is running",
		})
	})

	// 仓储与服务
	trackRepo := repository.NewTrackRepository(db)
	runRepo := repository.NewRecursionRepository(db)
	taskRepo := repository.NewAnalysisTaskRepository(db)

	runner := analysis.NewRecursionRunner(trackRepo, runRepo, analysis.RunnerConfig{
		DefaultTimeUnits: cfg.DefaultTimeUnits,
		Workers:          cfg.Workers,
		LogIncrement:     cfg.LogIncrement,
	})

	trackService := service.NewTrackService(trackRepo)
	recursionService := service.NewRecursionService(runner, runRepo)
	taskService := service.NewAnalysisTaskService(taskRepo, &analysis.Env{Tasks: taskRepo, Runner: runner})

	trackHandler := handler.NewTrackHandler(trackService)
	recursionHandler := handler.NewRecursionHandler(recursionService)
	taskHandler := handler.NewAnalysisTaskHandler(taskService)

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 轨迹数据集接口
		datasets := api.Group("/datasets")
		{
			datasets.GET("", trackHandler.ListDatasets)
			datasets.POST("/:name/points", trackHandler.UploadPoints)
			datasets.GET("/:name/points", trackHandler.GetTrackPoints)
			datasets.DELETE("/:name", trackHandler.DeleteDataset)
		}

		// 重访计算接口
		recursions := api.Group("/recursions")
		{
			recursions.POST("", recursionHandler.Compute)
			recursions.GET("", recursionHandler.ListRuns)
			recursions.GET("/:id", recursionHandler.GetRun)
			recursions.GET("/:id/patterns", recursionHandler.GetPatterns)
			recursions.DELETE("/:id", recursionHandler.DeleteRun)
		}
	}

	// 管理接口（需要 JWT）
	admin := r.Group("/api/admin", middleware.RequireAdmin(cfg.JWTSecret))
	{
		tasks := admin.Group("/analysis/tasks")
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.DELETE("/:id", taskHandler.CancelTask)
		}
	}

	return &Server{Engine: r, Tasks: taskService, limiter: limiter}
}
