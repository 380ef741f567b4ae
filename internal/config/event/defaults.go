package event

// 事件系统配置默认值
const (
	// defaultEnabled 默认启用事件系统
	defaultEnabled = true

	// defaultBufferSize 默认事件缓冲区大小
	defaultBufferSize = 1000

	// defaultMaxWorkers 异步订阅者回调的最大工作者数量
	defaultMaxWorkers = 10

	// defaultEnableHistory 默认不记录事件历史
	// 事件历史主要服务于调试与审计场景，常规运行不开启
	defaultEnableHistory = false

	// defaultHistoryMaxSize 事件历史最大条数（启用时生效）
	defaultHistoryMaxSize = 1000
)
