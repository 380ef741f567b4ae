// module.go: 抽取协议模块
package gacha

import (
	"go.uber.org/fx"

	"github.com/gachago/v1/internal/core/infrastructure/metrics"
	confidentialInterface "github.com/gachago/v1/pkg/interfaces/confidential"
	gachaInterface "github.com/gachago/v1/pkg/interfaces/gacha"
	eventInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/event"
	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	tokenInterface "github.com/gachago/v1/pkg/interfaces/token"
	zkproofInterface "github.com/gachago/v1/pkg/interfaces/zkproof"
)

// ModuleParams 定义抽取协议模块的依赖参数
type ModuleParams struct {
	fx.In

	Store    storageInterface.BadgerStore  // 持久化存储
	Tokens   tokenInterface.Service        // 明文代币账本
	Ledger   confidentialInterface.Service // 机密余额账本
	Proofs   zkproofInterface.Service      // 证明校验服务
	EventBus eventInterface.EventBus       // 事件总线
	Metrics  *metrics.Metrics              `optional:"true"` // 指标收集器
	Logger   logInterface.Logger           // 日志记录器
}

// ModuleOutput 定义抽取协议模块的输出结构
type ModuleOutput struct {
	fx.Out

	Service gachaInterface.Service // 抽取协议服务接口
}

// Module 返回抽取协议模块
func Module() fx.Option {
	return fx.Module("gacha",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供抽取协议服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	repo := NewRepository(params.Store)
	svc := NewService(repo, params.Tokens, params.Ledger, params.Proofs,
		params.EventBus, params.Metrics, params.Logger.With("module", "gacha"))
	return ModuleOutput{
		Service: svc,
	}, nil
}
