// module.go: HTTP API模块
package http

import (
	"go.uber.org/fx"

	logInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
)

// Module 返回HTTP服务模块
func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewServer),

		// 强制实例化服务器，确保生命周期钩子被注册
		fx.Invoke(func(server *Server, logger logInterface.Logger) {
			logger.Info("HTTP API模块加载")
		}),
	)
}
