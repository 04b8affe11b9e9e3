package wire

import (
	"database/sql"
	"log/slog"
	"net"

	"github.com/encuestaia/backend/internal/application/lead"
	"github.com/encuestaia/backend/internal/domain/events"
	"github.com/encuestaia/backend/internal/infrastructure/catalog"
	applog "github.com/encuestaia/backend/internal/infrastructure/log"
	"github.com/encuestaia/backend/internal/infrastructure/watcher"
	"github.com/encuestaia/backend/internal/infrastructure/websocket"
	"github.com/encuestaia/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *interfaces.HTTPServer
	MCPServer  *interfaces.MCPServer
	wsHub      *websocket.Hub
	catalogs   *catalog.Store
	dispatcher *lead.Dispatcher
	db         *sql.DB
	logger     *slog.Logger

	// 目录热加载相关
	eventBus       events.EventBus
	catalogWatcher *watcher.FileWatcher

	unsubscribers []func()
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	wsHub *websocket.Hub,
	catalogs *catalog.Store,
	dispatcher *lead.Dispatcher,
	eventBus events.EventBus,
	catalogWatcher *watcher.FileWatcher,
	db *sql.DB,
) *App {
	return &App{
		HTTPServer:     httpServer,
		MCPServer:      mcpServer,
		wsHub:          wsHub,
		catalogs:       catalogs,
		dispatcher:     dispatcher,
		eventBus:       eventBus,
		catalogWatcher: catalogWatcher,
		db:             db,
		logger:         applog.NewModuleLogger("app", "main"),
	}
}

// Start 启动所有服务；ln 为单例锁持有的监听器，为 nil 时自行监听配置端口
func (a *App) Start(ln net.Listener) error {
	a.logger.Info("Starting encuesta.ia backend application")

	// 注册事件订阅者并启动目录监听
	a.setupEventSubscribers()
	if a.catalogWatcher != nil {
		if err := a.catalogWatcher.Start(); err != nil {
			a.logger.Error("Failed to start catalog watcher",
				"error", err,
			)
		} else {
			a.logger.Info("Catalog watcher started", "path", a.catalogs.Path())
		}
	}

	// 启动 WebSocket Hub
	a.wsHub.Start()

	if err := a.MCPServer.Start(); err != nil {
		return err
	}

	// 启动 HTTP 服务器（goroutine）
	go func() {
		var err error
		if ln != nil {
			err = a.HTTPServer.Serve(ln)
		} else {
			err = a.HTTPServer.Start()
		}
		if err != nil {
			a.logger.Error("Failed to start HTTP server",
				"error", err,
			)
		}
	}()

	a.logger.Info("encuesta.ia backend application started successfully",
		"catalog_source", a.catalogs.Source(),
	)
	return nil
}

// setupEventSubscribers 注册事件订阅者
func (a *App) setupEventSubscribers() {
	if a.eventBus == nil {
		return
	}

	// 目录覆盖文件变化时重新加载
	a.unsubscribers = append(a.unsubscribers, a.catalogs.Subscribe(a.eventBus))

	// 会话事件推送到浏览器
	a.unsubscribers = append(a.unsubscribers, a.wsHub.Subscribe(a.eventBus))
	a.logger.Info("WebSocket hub subscribed to survey events")

	// 报告生成后推送线索
	a.unsubscribers = append(a.unsubscribers, a.dispatcher.Subscribe(a.eventBus))
	a.logger.Info("Lead dispatcher subscribed to report events")
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping encuesta.ia backend application")

	// 停止 HTTP 服务器，不再接收新请求
	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
	}
	if err := a.MCPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop MCP server",
			"error", err,
		)
	}

	// 停止目录监听器
	if a.catalogWatcher != nil {
		a.catalogWatcher.Stop()
		a.logger.Info("Catalog watcher stopped")
	}

	for _, unsubscribe := range a.unsubscribers {
		unsubscribe()
	}
	a.unsubscribers = nil

	// 关闭事件总线，等待进行中的线索推送完成
	if a.eventBus != nil {
		a.eventBus.Close()
		a.logger.Info("Event bus closed")
	}

	a.wsHub.Stop()

	// 关闭数据库连接
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Failed to close database connection",
				"error", err,
			)
			return err
		}
	}

	a.logger.Info("encuesta.ia backend application stopped")
	return nil
}
