// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/gachago/v1/internal/config/api"
	eventconfig "github.com/gachago/v1/internal/config/event"
	logconfig "github.com/gachago/v1/internal/config/log"
	badgerconfig "github.com/gachago/v1/internal/config/storage/badger"
	"github.com/gachago/v1/pkg/types"
)

// Provider 配置提供者接口
type Provider interface {
	// === 核心配置 ===

	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetEvent 获取事件配置
	GetEvent() *eventconfig.EventOptions

	// === 存储引擎配置 ===

	// GetBadger 获取BadgerDB存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// === 原始配置访问 ===

	// GetAppConfig 获取原始应用配置（用于验证等场景）
	GetAppConfig() *types.AppConfig
}
