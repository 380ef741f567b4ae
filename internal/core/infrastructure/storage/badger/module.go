// Package badger 提供BadgerDB存储模块
package badger

import (
	"context"

	badgerconfig "github.com/gachago/v1/internal/config/storage/badger"
	"github.com/gachago/v1/pkg/interfaces/config"
	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Provider  config.Provider     // 配置提供者
	Logger    logInterface.Logger // 日志记录器
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	Store storageInterface.BadgerStore // BadgerDB存储接口
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供存储服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	cfg := badgerconfig.NewFromOptions(params.Provider.GetBadger())

	store, err := New(cfg, params.Logger.With("module", "storage"))
	if err != nil {
		return ModuleOutput{}, err
	}

	// 应用停止时关闭数据库，确保写入落盘
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})

	return ModuleOutput{
		Store: store,
	}, nil
}
