// Package metrics 提供指标模块
package metrics

import (
	"go.uber.org/fx"
)

// ModuleOutput 定义指标模块的输出结构
type ModuleOutput struct {
	fx.Out

	Metrics *Metrics
}

// Module 返回指标模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供指标服务
func ProvideServices() (ModuleOutput, error) {
	return ModuleOutput{
		Metrics: New(),
	}, nil
}
