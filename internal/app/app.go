// Package app 提供应用组装与生命周期管理
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/gachago/v1/pkg/interfaces/config"
	"github.com/gachago/v1/pkg/types"
)

// AppModule 返回应用核心模块
//
// 向config模块提供加载好的config.AppOptions实现。
func AppModule(opts *options) fx.Option {
	return fx.Options(
		fx.Provide(func() config.AppOptions {
			return loadConfig(opts)
		}),
	)
}

// loadConfig 加载应用配置
//
// 未指定配置文件或读取失败时回落到默认配置；配置字段一律使用
// 指针类型，nil表示"用户未设置，使用默认值"。
func loadConfig(opts *options) config.AppOptions {
	configPath := opts.configFilePath
	if envPath := os.Getenv("GACHAGO_CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	if configPath == "" {
		return opts
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		fmt.Printf("读取配置文件失败: %v，使用默认配置\n", err)
		return opts
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		fmt.Printf("解析配置文件失败: %v，使用默认配置\n", err)
		return opts
	}

	fmt.Printf("已成功加载配置文件: %s\n", configPath)
	opts.appConfig = &appConfig
	return opts
}

// App 是应用的对外接口
type App interface {
	// Stop 停止应用
	Stop() error

	// Wait 等待应用收到退出信号
	Wait()
}

// internalApp 应用的内部实现
type internalApp struct {
	bootstrap *Bootstrap
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Wait 等待应用收到退出信号
func (a *internalApp) Wait() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	sig := <-signals
	fmt.Printf("\n收到信号 %v，正在优雅退出...\n", sig)

	if err := a.Stop(); err != nil {
		fmt.Printf("停止应用时出错: %v\n", err)
	}
}

// Start 启动应用
func Start(appOptions ...Option) (App, error) {
	opts := newOptions(appOptions...)

	bootstrap := NewBootstrap(opts)
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := bootstrap.StartApp(startupCtx); err != nil {
		return nil, err
	}

	return &internalApp{
		bootstrap: bootstrap,
	}, nil
}
