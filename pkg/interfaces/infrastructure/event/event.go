// Package event 提供系统的事件总线接口定义
//
// 🎯 **事件总线系统 (Event Bus System)**
//
// 本文件定义了事件总线接口，支持：
// - 标准事件订阅和发布
// - 异步事件处理
// - 事件历史和监控
package event

import "github.com/gachago/v1/pkg/types"

// 兼容别名
type EventType = types.EventType

// Event 事件接口
type Event interface {
	// Type 返回事件类型
	Type() EventType
	// Data 返回事件数据
	Data() interface{}
}

// EventBus 事件总线接口
//
// 注意：事件总线由DI容器自动管理生命周期
type EventBus interface {
	// Subscribe 订阅事件
	Subscribe(eventType EventType, handler interface{}) error
	// SubscribeAsync 异步订阅事件
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error
	// SubscribeOnce 一次性订阅事件
	SubscribeOnce(eventType EventType, handler interface{}) error
	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})
	// PublishEvent 发布Event接口类型事件
	PublishEvent(event Event)
	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error
	// WaitAsync 等待所有异步处理完成
	WaitAsync()
	// HasCallback 检查是否有回调函数
	HasCallback(eventType EventType) bool
	// GetEventHistory 获取指定事件类型的历史记录
	// 如果历史功能未启用或没有历史记录，返回nil
	GetEventHistory(eventType EventType) []interface{}
	// EnableEventHistory 启用事件历史记录
	EnableEventHistory(eventType EventType, maxSize int) error
}

// ==================== 预定义事件类型 ====================

const (
	// 系统事件
	EventTypeSystemStartup  EventType = "system.startup"
	EventTypeSystemShutdown EventType = "system.shutdown"

	// 抽取生命周期事件（由核心状态机在每次成功转换后发布）
	EventTypeGameConfigInitialized EventType = "gacha.config.initialized"
	EventTypePullCreated           EventType = "gacha.pull.created"
	EventTypePendingBalanceApplied EventType = "gacha.pull.pending_applied"
	EventTypePullVerified          EventType = "gacha.pull.verified"
	EventTypePullBought            EventType = "gacha.pull.bought"
	EventTypePullClaimed           EventType = "gacha.pull.claimed"
)
