// Package event 提供事件总线功能
package event

import (
	eventconfig "github.com/gachago/v1/internal/config/event"
	"github.com/gachago/v1/pkg/interfaces/config"
	eventInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/event"
	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
)

// ModuleParams 定义事件模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider config.Provider     // 配置提供者
	Logger   logInterface.Logger // 日志记录器
}

// ModuleOutput 定义事件模块的输出结构
type ModuleOutput struct {
	fx.Out

	EventBus eventInterface.EventBus // 事件总线接口
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		// 提供事件总线服务
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供事件总线服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	options := params.Provider.GetEvent()
	cfg := eventconfig.New(nil)
	// 采用提供者处理后的完整配置
	*cfg.GetOptions() = *options

	bus := New(cfg)

	// 按配置预开启生命周期事件的历史记录
	if options.EnableHistory {
		lifecycleEvents := []eventInterface.EventType{
			eventInterface.EventTypeGameConfigInitialized,
			eventInterface.EventTypePullCreated,
			eventInterface.EventTypePendingBalanceApplied,
			eventInterface.EventTypePullVerified,
			eventInterface.EventTypePullBought,
			eventInterface.EventTypePullClaimed,
		}
		for _, et := range lifecycleEvents {
			if err := bus.EnableEventHistory(et, options.HistoryMaxSize); err != nil {
				params.Logger.Warnf("启用事件历史失败: type=%s, err=%v", et, err)
			}
		}
	}

	params.Logger.Infof("事件总线已初始化: history=%v", options.EnableHistory)

	return ModuleOutput{
		EventBus: bus,
	}, nil
}
