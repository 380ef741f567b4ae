package config

import (
	"github.com/gachago/v1/pkg/types"
)

// AppOptions 应用配置选项接口
// 由应用入口（CLI）实现，向配置模块提供加载好的用户配置
type AppOptions interface {
	// GetAppConfig 获取应用配置
	GetAppConfig() *types.AppConfig

	// GetConfigPath 获取配置文件路径（未指定时返回空字符串）
	GetConfigPath() string
}
