package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/encuestaia/backend/internal/infrastructure/config"
	"github.com/encuestaia/backend/internal/infrastructure/log"
	"github.com/encuestaia/backend/internal/infrastructure/singleton"
	"github.com/encuestaia/backend/internal/interfaces/http/handler"
	"github.com/encuestaia/backend/internal/interfaces/http/middleware"
	"github.com/encuestaia/backend/internal/interfaces/mcp"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	cfg *config.Config,
	surveyHandler *handler.SurveyHandler,
	legacyHandler *handler.LegacyHandler,
	catalogHandler *handler.CatalogHandler,
	statsHandler *handler.StatsHandler,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(cfg.Server.CORSOrigins),
		middleware.EnsureUTF8Body(),
	)

	logger := log.NewModuleLogger("http", "server")

	// 注册路由
	api := router.Group("/api/v1")
	{
		surveys := api.Group("/surveys")
		{
			surveys.POST("", surveyHandler.Create)
			surveys.GET("", surveyHandler.List)
			surveys.GET("/:id", surveyHandler.Get)
			surveys.POST("/:id/begin", surveyHandler.Begin)
			surveys.POST("/:id/answers", surveyHandler.Answer)
			surveys.POST("/:id/contact", surveyHandler.Contact)
			surveys.POST("/:id/report", surveyHandler.Report)
			surveys.POST("/:id/reset", surveyHandler.Reset)
			surveys.GET("/:id/export", surveyHandler.Export)
			surveys.GET("/:id/ws", surveyHandler.Events)
		}

		api.GET("/catalog", catalogHandler.Get)
		api.GET("/stats/llm", statsHandler.LLM)
	}

	// 兼容旧版前端的无状态接口
	legacy := router.Group("/api/ai")
	{
		legacy.POST("/question", legacyHandler.Question)
		legacy.POST("/report", legacyHandler.Report)
	}

	// 健康检查，单例锁依赖 service 字段识别本服务
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"service":   singleton.ServiceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Swagger 文档
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router:   router,
		httpPort: cfg.Server.HTTPPort,
		logger:   logger,
	}
}

// Handler 返回路由，供测试使用
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Port 监听端口
func (s *HTTPServer) Port() string {
	return s.httpPort
}

// Start 启动服务器
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.httpPort)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve 在已持有的监听器上提供服务（单例锁获得的端口）
func (s *HTTPServer) Serve(ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP server starting",
		"addr", ln.Addr().String(),
	)

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Stop 停止服务器
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
