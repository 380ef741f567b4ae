package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/gachago/v1/internal/api/http/handlers"
	"github.com/gachago/v1/internal/core/infrastructure/metrics"
	configInterface "github.com/gachago/v1/pkg/interfaces/config"
	gachaInterface "github.com/gachago/v1/pkg/interfaces/gacha"
	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
)

// Server HTTP服务器结构
//
// 对外提供抽取协议的REST API、健康检查与Prometheus指标端点。
// 路由管理、服务启动和停止由fx生命周期钩子驱动。
type Server struct {
	router       *gin.Engine                  // Gin路由引擎
	httpServer   *http.Server                 // 标准HTTP服务器
	config       configInterface.Provider     // 配置提供者
	logger       logInterface.Logger          // 日志记录器
	gachaService gachaInterface.Service       // 抽取协议服务
	store        storageInterface.BadgerStore // 存储服务（健康检查用）
	metrics      *metrics.Metrics             // 指标收集器（可选）
}

// NewServer 创建新的HTTP服务器
//
// 该函数在fx框架的依赖注入系统中注册，自动接收所需依赖，
// 并把服务器的启动与停止挂接到fx生命周期。
func NewServer(
	lifecycle fx.Lifecycle,
	config configInterface.Provider,
	logger logInterface.Logger,
	gachaService gachaInterface.Service,
	store storageInterface.BadgerStore,
	m *metrics.Metrics,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		router:       router,
		config:       config,
		logger:       logger,
		gachaService: gachaService,
		store:        store,
		metrics:      m,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})

	server.setupRoutes()

	return server
}

// setupRoutes 设置HTTP路由
//
// 所有业务端点都在/api/v1路径下，便于将来版本升级和兼容性管理。
// 健康检查与指标端点挂在根路径。
func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")

	gachaHandlers := handlers.NewGachaHandlers(s.gachaService, s.logger)
	gachaHandlers.RegisterRoutes(v1)

	healthHandlers := handlers.NewHealthHandler(s.logger, s.store)
	healthHandlers.RegisterRoutes(&s.router.RouterGroup)

	apiOptions := s.config.GetAPI()
	if s.metrics != nil && apiOptions != nil && apiOptions.Metrics.Enabled {
		path := apiOptions.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		s.router.GET(path, gin.WrapH(promhttp.HandlerFor(
			s.metrics.Registry(),
			promhttp.HandlerOpts{},
		)))
		s.logger.Infof("Prometheus指标端点已注册: %s", path)
	}

	s.logger.Info("所有API路由已注册完成")
}

// Start 启动HTTP服务器
//
// 从配置中读取监听地址，在后台goroutine中启动监听过程，
// 并等待端口可连接后才返回，保证启动失败尽早暴露。
func (s *Server) Start() error {
	apiOptions := s.config.GetAPI()
	if apiOptions == nil || !apiOptions.HTTP.Enabled {
		s.logger.Info("HTTP API在配置中被禁用，跳过启动")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", apiOptions.HTTP.Host, apiOptions.HTTP.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  apiOptions.HTTP.ReadTimeout,
		WriteTimeout: apiOptions.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		// 正常关闭时返回http.ErrServerClosed，不视为错误
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP服务器运行失败: %v", err)
		}
	}()

	if err := s.waitForServerReady(addr, 3*time.Second); err != nil {
		return fmt.Errorf("HTTP服务器启动验证失败: %w", err)
	}

	s.logger.Infof("✅ HTTP服务器启动成功，监听地址: %s", addr)
	return nil
}

// Stop 停止HTTP服务器
//
// 优雅关闭，等待活跃请求处理完成，超时后强制关闭。
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("正在关闭HTTP服务器")

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}

	s.logger.Info("HTTP服务器已关闭")
	return nil
}

// waitForServerReady 等待服务器端口可连接
func (s *Server) waitForServerReady(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("超时等待服务器启动: %s", addr)
}
