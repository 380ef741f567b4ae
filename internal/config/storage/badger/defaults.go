package badger

// BadgerDB存储配置默认值
const (
	// defaultPath 默认数据库存储路径
	defaultPath = "./data/badger"

	// defaultSyncWrites 默认关闭同步写入
	// 抽取协议的每次状态转换都是幂等可重放的，写放大优先于单次写延迟
	defaultSyncWrites = false

	// defaultMemTableSize 内存表大小（64MB）
	defaultMemTableSize = 64 << 20

	// defaultInMemory 默认使用磁盘模式
	// 内存模式仅供测试使用
	defaultInMemory = false

	// defaultEnableAutoCompaction 默认启用自动压缩
	defaultEnableAutoCompaction = true
)
