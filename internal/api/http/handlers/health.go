package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
)

// HealthHandler 健康检查端点处理器
//
// 🏥 **Kubernetes风格健康检查**
//
// - /health: 完整健康报告（存储状态 + 运行时长）
// - /health/live: 存活检查（进程是否响应）
// - /health/ready: 就绪检查（存储是否可读）
type HealthHandler struct {
	logger    logInterface.Logger
	store     storageInterface.BadgerStore
	startTime time.Time
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(logger logInterface.Logger, store storageInterface.BadgerStore) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		store:     store,
		startTime: time.Now(),
	}
}

// RegisterRoutes 注册健康检查路由
func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("", h.GetHealth)
		health.GET("/live", h.GetLiveness)
		health.GET("/ready", h.GetReadiness)
	}
}

// GetHealth 获取完整健康状态
//
// GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	storageHealthy := h.isStorageReady(c.Request.Context())

	status := "healthy"
	if !storageHealthy {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).String(),
		"components": gin.H{
			"storage": storageHealthy,
		},
	})
}

// GetLiveness 存活检查（Kubernetes Liveness Probe）
//
// GET /health/live
//
// 仅确认进程响应，不检查依赖，避免因依赖故障导致重启。
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// GetReadiness 就绪检查（Kubernetes Readiness Probe）
//
// GET /health/ready
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	if !h.isStorageReady(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// isStorageReady 探测存储是否可读
func (h *HealthHandler) isStorageReady(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if _, err := h.store.Get(probeCtx, []byte("health/probe")); err != nil {
		h.logger.Warnf("存储健康探测失败: %v", err)
		return false
	}
	return true
}
