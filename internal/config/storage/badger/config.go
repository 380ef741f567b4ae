package badger

import (
	configtypes "github.com/gachago/v1/pkg/types"
)

// BadgerOptions BadgerDB存储配置选项
// 专注于基础设施核心功能的简化配置
type BadgerOptions struct {
	// === 基础配置 ===
	Path       string `json:"path"`        // 数据库存储路径
	SyncWrites bool   `json:"sync_writes"` // 是否同步写入（数据安全性）
	InMemory   bool   `json:"in_memory"`   // 是否使用纯内存模式（测试用）

	// === 基础性能配置 ===
	MemTableSize int64 `json:"mem_table_size"` // 内存表大小

	// === 维护配置 ===
	EnableAutoCompaction bool `json:"enable_auto_compaction"` // 是否启用自动压缩
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置实现
func New(userConfig *configtypes.UserStorageConfig) *Config {
	defaultOptions := createDefaultBadgerOptions()

	// 如果有用户配置，应用用户配置覆盖默认值
	if userConfig != nil && userConfig.Badger != nil {
		applyUserConfig(defaultOptions, userConfig.Badger)
	}

	return &Config{
		options: defaultOptions,
	}
}

// NewFromOptions 从BadgerOptions创建配置实现
func NewFromOptions(options *BadgerOptions) *Config {
	return &Config{
		options: options,
	}
}

// createDefaultBadgerOptions 创建默认BadgerDB配置
func createDefaultBadgerOptions() *BadgerOptions {
	return &BadgerOptions{
		Path:                 defaultPath,
		SyncWrites:           defaultSyncWrites,
		InMemory:             defaultInMemory,
		MemTableSize:         defaultMemTableSize,
		EnableAutoCompaction: defaultEnableAutoCompaction,
	}
}

// applyUserConfig 应用用户配置覆盖默认值
func applyUserConfig(options *BadgerOptions, userConfig *configtypes.UserBadgerConfig) {
	if userConfig.Path != nil {
		options.Path = *userConfig.Path
	}
	if userConfig.SyncWrites != nil {
		options.SyncWrites = *userConfig.SyncWrites
	}
	if userConfig.MemTableSizeMB != nil {
		options.MemTableSize = int64(*userConfig.MemTableSizeMB) << 20
	}
	if userConfig.InMemory != nil {
		options.InMemory = *userConfig.InMemory
	}
}

// GetOptions 获取完整的BadgerDB配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}

// === 基础配置访问方法 ===

// GetPath 获取数据库路径
func (c *Config) GetPath() string {
	return c.options.Path
}

// IsSyncWritesEnabled 是否启用同步写入
func (c *Config) IsSyncWritesEnabled() bool {
	return c.options.SyncWrites
}

// IsInMemory 是否使用纯内存模式
func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}

// GetMemTableSize 获取内存表大小
func (c *Config) GetMemTableSize() int64 {
	return c.options.MemTableSize
}

// IsAutoCompactionEnabled 是否启用自动压缩
func (c *Config) IsAutoCompactionEnabled() bool {
	return c.options.EnableAutoCompaction
}
