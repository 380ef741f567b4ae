package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	httpapi "github.com/gachago/v1/internal/api/http"
	config "github.com/gachago/v1/internal/config"
	"github.com/gachago/v1/internal/core/confidential"
	"github.com/gachago/v1/internal/core/gacha"
	"github.com/gachago/v1/internal/core/infrastructure/event"
	log "github.com/gachago/v1/internal/core/infrastructure/log"
	"github.com/gachago/v1/internal/core/infrastructure/metrics"
	badger "github.com/gachago/v1/internal/core/infrastructure/storage/badger"
	"github.com/gachago/v1/internal/core/token"
	"github.com/gachago/v1/internal/core/zkproof"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{
		opts: opts,
	}
}

// SetupInfrastructureLayer 设置基础设施层模块
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		config.Module(),  // 1. 配置（不依赖其他）
		log.Module(),     // 2. 日志（依赖配置）
		event.Module(),   // 3. 事件总线（依赖配置和日志）
		badger.Module(),  // 4. 存储（依赖配置和日志）
		metrics.Module(), // 5. 指标（不依赖其他）
	}
}

// SetupBusinessLayer 设置业务逻辑层模块
//
// 加载顺序必须遵循模块间的依赖关系：
// 证明校验 -> 代币账本 -> 机密账本 -> 抽取协议
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		zkproof.Module(),      // 1. 证明上下文校验（依赖存储）
		token.Module(),        // 2. 明文代币账本（依赖存储）
		confidential.Module(), // 3. 机密余额账本（依赖存储、代币、证明）
		gacha.Module(),        // 4. 抽取协议核心（依赖以上全部）
	}
}

// SetupApplicationLayer 设置应用层模块
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	modules := []fx.Option{
		AppModule(b.opts),
	}

	if b.opts.enableAPI {
		modules = append(modules, httpapi.Module())
	}

	return modules
}

// SetupModules 按依赖顺序装配所有应用模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var allModules []fx.Option

	allModules = append(allModules, b.SetupInfrastructureLayer()...)
	allModules = append(allModules, b.SetupBusinessLayer()...)
	allModules = append(allModules, b.SetupApplicationLayer()...)

	return allModules
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	appOptions := []fx.Option{
		fx.Options(b.SetupModules()...),

		// 禁用fx内部日志
		fx.NopLogger,
	}

	b.fxApp = fx.New(appOptions...)
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}
