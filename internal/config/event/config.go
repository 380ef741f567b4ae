package event

import (
	configtypes "github.com/gachago/v1/pkg/types"
)

// EventOptions 事件系统配置选项
// 专注于基础设施核心功能的简化配置
type EventOptions struct {
	// === 基础配置 ===
	Enabled    bool `json:"enabled"`     // 是否启用事件系统
	BufferSize int  `json:"buffer_size"` // 事件缓冲区大小
	MaxWorkers int  `json:"max_workers"` // 最大工作者数量

	// === 事件历史配置 ===
	EnableHistory  bool `json:"enable_history"`   // 是否记录事件历史
	HistoryMaxSize int  `json:"history_max_size"` // 事件历史最大条数
}

// Config 事件配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件配置实现
func New(userConfig *configtypes.UserEventConfig) *Config {
	// 1. 先创建完整的默认配置
	defaultOptions := createDefaultEventOptions()

	// 2. 如果有用户配置，应用用户配置覆盖默认值
	if userConfig != nil {
		applyUserEventConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// createDefaultEventOptions 创建默认事件配置
func createDefaultEventOptions() *EventOptions {
	return &EventOptions{
		Enabled:    defaultEnabled,
		BufferSize: defaultBufferSize,
		MaxWorkers: defaultMaxWorkers,

		EnableHistory:  defaultEnableHistory,
		HistoryMaxSize: defaultHistoryMaxSize,
	}
}

// applyUserEventConfig 应用用户事件配置覆盖默认值
func applyUserEventConfig(options *EventOptions, userConfig *configtypes.UserEventConfig) {
	if userConfig.EnableHistory != nil {
		options.EnableHistory = *userConfig.EnableHistory
	}
	if userConfig.HistoryMaxSize != nil {
		options.HistoryMaxSize = *userConfig.HistoryMaxSize
	}
}

// GetOptions 获取完整的事件配置选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}

// === 基础配置访问方法 ===

// IsEnabled 是否启用事件系统
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}

// GetBufferSize 获取事件缓冲区大小
func (c *Config) GetBufferSize() int {
	return c.options.BufferSize
}

// GetMaxWorkers 获取最大工作者数量
func (c *Config) GetMaxWorkers() int {
	return c.options.MaxWorkers
}

// IsHistoryEnabled 是否记录事件历史
func (c *Config) IsHistoryEnabled() bool {
	return c.options.EnableHistory
}

// GetHistoryMaxSize 获取事件历史最大条数
func (c *Config) GetHistoryMaxSize() int {
	return c.options.HistoryMaxSize
}
