// module.go: 代币账本模块
package token

import (
	"go.uber.org/fx"

	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	tokenInterface "github.com/gachago/v1/pkg/interfaces/token"
)

// ModuleParams 定义代币账本模块的依赖参数
type ModuleParams struct {
	fx.In

	Store  storageInterface.BadgerStore // 账本存储
	Logger logInterface.Logger          // 日志记录器
}

// ModuleOutput 定义代币账本模块的输出结构
type ModuleOutput struct {
	fx.Out

	Service tokenInterface.Service // 代币账本服务接口
}

// Module 返回代币账本模块
func Module() fx.Option {
	return fx.Module("token",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供代币账本服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	svc := NewService(params.Store, params.Logger.With("module", "token"))
	return ModuleOutput{
		Service: svc,
	}, nil
}
