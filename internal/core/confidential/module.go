// module.go: 机密账本模块
package confidential

import (
	"go.uber.org/fx"

	confidentialInterface "github.com/gachago/v1/pkg/interfaces/confidential"
	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	tokenInterface "github.com/gachago/v1/pkg/interfaces/token"
	zkproofInterface "github.com/gachago/v1/pkg/interfaces/zkproof"
)

// ModuleParams 定义机密账本模块的依赖参数
type ModuleParams struct {
	fx.In

	Store  storageInterface.BadgerStore // 账本存储
	Tokens tokenInterface.Service       // 明文代币账本
	Proofs zkproofInterface.Service     // 证明校验服务
	Logger logInterface.Logger          // 日志记录器
}

// ModuleOutput 定义机密账本模块的输出结构
type ModuleOutput struct {
	fx.Out

	Service confidentialInterface.Service // 机密账本服务接口
}

// Module 返回机密账本模块
func Module() fx.Option {
	return fx.Module("confidential",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供机密账本服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	svc := NewService(params.Store, params.Tokens, params.Proofs, params.Logger.With("module", "confidential"))
	return ModuleOutput{
		Service: svc,
	}, nil
}
