package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gachago/v1/internal/core/gacha"
	gachaInterface "github.com/gachago/v1/pkg/interfaces/gacha"
	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
)

// GachaHandlers 抽取协议HTTP处理器
//
// 🎰 **抽取生命周期端点**
//
// 把Service接口的九个操作映射为REST端点。请求体与Params结构
// 一一对应，路径中的抽取序号覆盖请求体内的同名字段。
type GachaHandlers struct {
	service gachaInterface.Service
	logger  logInterface.Logger
}

// NewGachaHandlers 创建抽取协议处理器
func NewGachaHandlers(service gachaInterface.Service, logger logInterface.Logger) *GachaHandlers {
	return &GachaHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes 注册抽取协议路由
func (h *GachaHandlers) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/game-config", h.InitializeGameConfig)
	r.GET("/game-config", h.GetGameConfig)

	pulls := r.Group("/pulls")
	{
		pulls.POST("", h.CreatePull)
		pulls.GET("/:id", h.GetPull)
		pulls.POST("/:id/apply-pending-balance", h.ApplyPendingBalance)
		pulls.POST("/:id/verify", h.VerifyPull)
		pulls.POST("/:id/buy", h.BuyPull)
		pulls.POST("/:id/open", h.OpenPull)
		pulls.POST("/:id/claim", h.ClaimPull)
	}
}

// InitializeGameConfig 初始化游戏配置
//
// POST /api/v1/game-config
func (h *GachaHandlers) InitializeGameConfig(c *gin.Context) {
	var params gachaInterface.InitializeGameConfigParams
	if err := c.ShouldBindJSON(&params); err != nil {
		h.badRequest(c, err)
		return
	}

	config, err := h.service.InitializeGameConfig(c.Request.Context(), params)
	if err != nil {
		h.serviceError(c, "initialize_game_config", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"game_config": config,
	})
}

// GetGameConfig 查询游戏配置
//
// GET /api/v1/game-config
func (h *GachaHandlers) GetGameConfig(c *gin.Context) {
	config, err := h.service.GetGameConfig(c.Request.Context())
	if err != nil {
		h.serviceError(c, "get_game_config", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"game_config": config,
	})
}

// CreatePull 创建抽取槽位
//
// POST /api/v1/pulls
func (h *GachaHandlers) CreatePull(c *gin.Context) {
	var params gachaInterface.CreatePullParams
	if err := c.ShouldBindJSON(&params); err != nil {
		h.badRequest(c, err)
		return
	}

	pull, err := h.service.CreatePull(c.Request.Context(), params)
	if err != nil {
		h.serviceError(c, "create_pull", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"pull": pull,
	})
}

// GetPull 查询抽取记录
//
// GET /api/v1/pulls/:id
func (h *GachaHandlers) GetPull(c *gin.Context) {
	id, ok := h.pullID(c)
	if !ok {
		return
	}

	pull, err := h.service.GetPull(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, "get_pull", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pull": pull,
	})
}

// ApplyPendingBalance 将托管的待处理入账并入可用余额
//
// POST /api/v1/pulls/:id/apply-pending-balance
func (h *GachaHandlers) ApplyPendingBalance(c *gin.Context) {
	id, ok := h.pullID(c)
	if !ok {
		return
	}

	var params gachaInterface.ApplyPullPendingBalanceParams
	if err := c.ShouldBindJSON(&params); err != nil {
		h.badRequest(c, err)
		return
	}
	params.PullID = id

	if err := h.service.ApplyPullPendingBalance(c.Request.Context(), params); err != nil {
		h.serviceError(c, "apply_pull_pending_balance", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pull_id": id,
		"status":  "applied",
	})
}

// VerifyPull 执行承诺校验协议
//
// POST /api/v1/pulls/:id/verify
func (h *GachaHandlers) VerifyPull(c *gin.Context) {
	id, ok := h.pullID(c)
	if !ok {
		return
	}

	var params gachaInterface.VerifyPullParams
	if err := c.ShouldBindJSON(&params); err != nil {
		h.badRequest(c, err)
		return
	}
	params.PullID = id

	if err := h.service.VerifyPull(c.Request.Context(), params); err != nil {
		h.serviceError(c, "verify_pull", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pull_id": id,
		"status":  "verified",
	})
}

// BuyPull 购买抽取
//
// POST /api/v1/pulls/:id/buy
func (h *GachaHandlers) BuyPull(c *gin.Context) {
	id, ok := h.pullID(c)
	if !ok {
		return
	}

	var params gachaInterface.BuyPullParams
	if err := c.ShouldBindJSON(&params); err != nil {
		h.badRequest(c, err)
		return
	}
	params.PullID = id

	if err := h.service.BuyPull(c.Request.Context(), params); err != nil {
		h.serviceError(c, "buy_pull", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pull_id": id,
		"status":  "bought",
	})
}

// OpenPull 揭示抽取（withdraw-to-plain变体）
//
// POST /api/v1/pulls/:id/open
func (h *GachaHandlers) OpenPull(c *gin.Context) {
	id, ok := h.pullID(c)
	if !ok {
		return
	}

	var params gachaInterface.OpenPullParams
	if err := c.ShouldBindJSON(&params); err != nil {
		h.badRequest(c, err)
		return
	}
	params.PullID = id

	if err := h.service.OpenPull(c.Request.Context(), params); err != nil {
		h.serviceError(c, "open_pull", err)
		return
	}

	pull, err := h.service.GetPull(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, "open_pull", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pull_id":         id,
		"status":          "claimed",
		"revealed_amount": pull.RevealedAmount,
	})
}

// ClaimPull 揭示抽取（机密-机密变体）
//
// POST /api/v1/pulls/:id/claim
func (h *GachaHandlers) ClaimPull(c *gin.Context) {
	id, ok := h.pullID(c)
	if !ok {
		return
	}

	var params gachaInterface.ClaimPullParams
	if err := c.ShouldBindJSON(&params); err != nil {
		h.badRequest(c, err)
		return
	}
	params.PullID = id

	if err := h.service.ClaimPull(c.Request.Context(), params); err != nil {
		h.serviceError(c, "claim_pull", err)
		return
	}

	pull, err := h.service.GetPull(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, "claim_pull", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pull_id":         id,
		"status":          "claimed",
		"revealed_amount": pull.RevealedAmount,
	})
}

// pullID 从路径参数解析抽取序号
func (h *GachaHandlers) pullID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid pull id",
		})
		return 0, false
	}
	return id, true
}

// badRequest 返回请求体解析错误
func (h *GachaHandlers) badRequest(c *gin.Context, err error) {
	h.logger.Debugf("请求体解析失败: %v", err)
	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
	})
}

// serviceError 把服务层错误映射为HTTP状态码
//
// 未找到类错误映射为404，状态冲突类映射为409，其余校验失败
// 一律400。内部错误不外泄细节。
func (h *GachaHandlers) serviceError(c *gin.Context, operation string, err error) {
	h.logger.Warnf("操作失败: operation=%s, error=%v", operation, err)

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, gacha.ErrGameConfigNotInitialized),
		errors.Is(err, gacha.ErrPullNotFound):
		status = http.StatusNotFound
	case errors.Is(err, gacha.ErrGameConfigAlreadyInitialized),
		errors.Is(err, gacha.ErrPullAlreadyPurchased),
		errors.Is(err, gacha.ErrPullAlreadyClaimed),
		errors.Is(err, gacha.ErrPullNotVerified):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}
