package types

// AppConfig 应用配置
//
// 零值陷阱处理：用户配置字段一律使用指针类型——
// nil表示"用户未设置，使用默认值"；&value表示用户明确设置（即使是零值）。
type AppConfig struct {
	Log     *UserLogConfig     `json:"log,omitempty"`
	Storage *UserStorageConfig `json:"storage,omitempty"`
	Event   *UserEventConfig   `json:"event,omitempty"`
	API     *UserAPIConfig     `json:"api,omitempty"`
}

// UserLogConfig 用户日志配置
type UserLogConfig struct {
	Level            *string `json:"level,omitempty"`
	ToConsole        *bool   `json:"to_console,omitempty"`
	FilePath         *string `json:"file_path,omitempty"`
	MaxSize          *int    `json:"max_size,omitempty"`
	MaxBackups       *int    `json:"max_backups,omitempty"`
	MaxAge           *int    `json:"max_age,omitempty"`
	Compress         *bool   `json:"compress,omitempty"`
	EnableCaller     *bool   `json:"enable_caller,omitempty"`
	EnableStacktrace *bool   `json:"enable_stacktrace,omitempty"`
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	Badger *UserBadgerConfig `json:"badger,omitempty"`
}

// UserBadgerConfig 用户BadgerDB配置
type UserBadgerConfig struct {
	Path           *string `json:"path,omitempty"`
	SyncWrites     *bool   `json:"sync_writes,omitempty"`
	MemTableSizeMB *int    `json:"mem_table_size_mb,omitempty"`
	InMemory       *bool   `json:"in_memory,omitempty"`
}

// UserEventConfig 用户事件总线配置
type UserEventConfig struct {
	EnableHistory  *bool `json:"enable_history,omitempty"`
	HistoryMaxSize *int  `json:"history_max_size,omitempty"`
}

// UserAPIConfig 用户API服务配置
type UserAPIConfig struct {
	Host          *string `json:"host,omitempty"`
	Port          *int    `json:"port,omitempty"`
	EnableMetrics *bool   `json:"enable_metrics,omitempty"`
}
