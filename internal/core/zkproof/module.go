// module.go: 证明校验模块
package zkproof

import (
	"go.uber.org/fx"

	"github.com/gachago/v1/internal/core/infrastructure/metrics"
	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	zkproofInterface "github.com/gachago/v1/pkg/interfaces/zkproof"
)

// ModuleParams 定义证明校验模块的依赖参数
type ModuleParams struct {
	fx.In

	Store   storageInterface.BadgerStore // 上下文记录存储
	Logger  logInterface.Logger          // 日志记录器
	Metrics *metrics.Metrics             `optional:"true"` // 指标收集器
}

// ModuleOutput 定义证明校验模块的输出结构
type ModuleOutput struct {
	fx.Out

	Service zkproofInterface.Service // 证明校验服务接口
}

// Module 返回证明校验模块
func Module() fx.Option {
	return fx.Module("zkproof",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供证明校验服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	svc := NewService(params.Store, params.Logger.With("module", "zkproof"), params.Metrics)
	return ModuleOutput{
		Service: svc,
	}, nil
}
