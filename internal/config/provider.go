package config

import (
	"github.com/gachago/v1/internal/config/api"
	"github.com/gachago/v1/internal/config/event"
	"github.com/gachago/v1/internal/config/log"
	"github.com/gachago/v1/internal/config/storage/badger"
	"github.com/gachago/v1/pkg/interfaces/config"
	"github.com/gachago/v1/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	return &Provider{
		appConfig: appConfig,
	}
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	// 直接传递用户API配置给api.New，让它处理默认值和转换
	var userAPIConfig *types.UserAPIConfig
	if p.appConfig != nil && p.appConfig.API != nil {
		userAPIConfig = p.appConfig.API
	}

	// api.New会处理默认值应用和用户配置覆盖
	return api.New(userAPIConfig).GetOptions()
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	// 直接传递用户日志配置给log.New，让它处理默认值和转换
	var userLogConfig *types.UserLogConfig
	if p.appConfig != nil && p.appConfig.Log != nil {
		userLogConfig = p.appConfig.Log
	}

	// log.New会处理默认值应用和用户配置覆盖
	return log.New(userLogConfig).GetOptions()
}

// GetEvent 获取事件配置
func (p *Provider) GetEvent() *event.EventOptions {
	var userEventConfig *types.UserEventConfig
	if p.appConfig != nil && p.appConfig.Event != nil {
		userEventConfig = p.appConfig.Event
	}

	return event.New(userEventConfig).GetOptions()
}

// GetBadger 获取BadgerDB存储配置
func (p *Provider) GetBadger() *badger.BadgerOptions {
	var userStorageConfig *types.UserStorageConfig
	if p.appConfig != nil && p.appConfig.Storage != nil {
		userStorageConfig = p.appConfig.Storage
	}

	// badger.New会处理默认值应用和用户配置覆盖
	return badger.New(userStorageConfig).GetOptions()
}

// GetAppConfig 获取原始应用配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}
