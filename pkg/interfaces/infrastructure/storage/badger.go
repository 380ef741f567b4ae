// Package storage 提供BadgerDB存储接口定义
//
// 💾 **BadgerDB存储服务 (BadgerDB Storage Service)**
//
// 🎯 **设计原则**
// - 性能优先：充分利用BadgerDB的性能优势
// - 数据安全：支持事务和数据完整性保障
// - 易用性：简洁的接口设计和错误处理
package storage

import (
	"context"
	"time"
)

//=============================================================================
// BadgerStore 接口定义
//=============================================================================

// BadgerStore 定义了键值存储的应用接口
// 提供简单易用的键值存储操作，用于游戏配置、抽取记录、
// 机密账户状态等持久化数据
type BadgerStore interface {
	//-------------------------------------------------------------------------
	// 生命周期管理
	//-------------------------------------------------------------------------

	// Close 关闭BadgerDB数据库连接
	// 确保所有待处理的事务被提交，数据被正确写入磁盘
	Close() error

	//-------------------------------------------------------------------------
	// 基本键值操作
	//-------------------------------------------------------------------------

	// Get 获取指定键的值
	// 如果键不存在，返回nil值和nil错误
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 设置键值对
	Set(ctx context.Context, key, value []byte) error

	// SetWithTTL 设置键值对并指定过期时间
	// ttl为0表示永不过期
	SetWithTTL(ctx context.Context, key, value []byte, ttl time.Duration) error

	// Delete 删除指定键的值
	// 如果键不存在，不会返回错误
	Delete(ctx context.Context, key []byte) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	//-------------------------------------------------------------------------
	// 扫描操作
	//-------------------------------------------------------------------------

	// PrefixScan 按前缀扫描键值对
	// 返回map的键为键的字符串表示
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	//-------------------------------------------------------------------------
	// 事务操作
	//-------------------------------------------------------------------------

	// RunInTransaction 在事务中执行操作
	// fn函数在事务上下文中执行，可以执行多个原子操作；
	// fn返回错误则事务回滚，否则提交。
	// 读取-检查-递增-创建序列（抽取序号计数器）必须在此事务范围内完成。
	RunInTransaction(ctx context.Context, fn func(txn Transaction) error) error
}

// Transaction 事务内的读写接口
type Transaction interface {
	// Get 事务内读取，键不存在时返回nil值和nil错误
	Get(key []byte) ([]byte, error)

	// Set 事务内写入
	Set(key, value []byte) error

	// Delete 事务内删除
	Delete(key []byte) error
}
