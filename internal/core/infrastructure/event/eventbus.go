// 基于asaskevich/EventBus的事件总线实现

package event

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
	eventconfig "github.com/gachago/v1/internal/config/event"
	"github.com/gachago/v1/pkg/interfaces/infrastructure/event"
)

// historyBuffer 单一事件类型的历史缓冲区
type historyBuffer struct {
	maxSize int
	entries []interface{}
}

// EventBus 是基于asaskevich/EventBus的实现
//
// 🎯 **核心特性**：
// - 保持与asaskevich/EventBus的完全兼容
// - 按事件类型可选的历史记录（调试与审计用）
type EventBus struct {
	// ================== 基础组件 ==================
	bus    evbus.Bus           // 底层事件总线
	config *eventconfig.Config // 配置

	// ================== 历史记录 ==================
	historyMu    sync.RWMutex                        // 历史记录锁
	eventHistory map[event.EventType]*historyBuffer  // 历史事件存储
}

// New 创建事件总线实例
// 所有事件总线实例必须通过此函数创建，确保配置被正确应用
func New(config *eventconfig.Config) event.EventBus {
	eb := &EventBus{
		bus:          evbus.New(),
		config:       config,
		eventHistory: make(map[event.EventType]*historyBuffer),
	}

	return eb
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil // 如果事件系统未启用，静默成功
	}
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// SubscribeOnce 实现一次性订阅
func (eb *EventBus) SubscribeOnce(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeOnce(string(eventType), handler)
}

// Publish 实现发布
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if !eb.config.IsEnabled() {
		return
	}

	eb.saveEventToHistory(eventType, args)

	eb.bus.Publish(string(eventType), args...)
}

// PublishEvent 发布Event接口类型事件
func (eb *EventBus) PublishEvent(e event.Event) {
	if !eb.config.IsEnabled() {
		return
	}

	eventType := e.Type()
	data := e.Data()

	eb.saveEventToHistory(eventType, []interface{}{data})

	eb.bus.Publish(string(eventType), data)
}

// saveEventToHistory 将事件写入历史缓冲区（仅对已启用历史的类型）
func (eb *EventBus) saveEventToHistory(eventType event.EventType, args []interface{}) {
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()

	buf, exists := eb.eventHistory[eventType]
	if !exists {
		return
	}

	if len(args) == 1 {
		buf.entries = append(buf.entries, args[0])
	} else {
		buf.entries = append(buf.entries, args)
	}

	// 超出上限时丢弃最旧的条目
	if buf.maxSize > 0 && len(buf.entries) > buf.maxSize {
		buf.entries = buf.entries[len(buf.entries)-buf.maxSize:]
	}
}

// GetEventHistory 获取指定类型的事件历史
func (eb *EventBus) GetEventHistory(eventType event.EventType) []interface{} {
	eb.historyMu.RLock()
	defer eb.historyMu.RUnlock()

	buf, exists := eb.eventHistory[eventType]
	if !exists || len(buf.entries) == 0 {
		return nil
	}

	out := make([]interface{}, len(buf.entries))
	copy(out, buf.entries)
	return out
}

// EnableEventHistory 启用事件历史记录
func (eb *EventBus) EnableEventHistory(eventType event.EventType, maxSize int) error {
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()

	if maxSize <= 0 {
		maxSize = eb.config.GetHistoryMaxSize()
	}

	if buf, exists := eb.eventHistory[eventType]; exists {
		buf.maxSize = maxSize
		return nil
	}

	eb.eventHistory[eventType] = &historyBuffer{
		maxSize: maxSize,
		entries: make([]interface{}, 0),
	}
	return nil
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// WaitAsync 等待异步处理完成
func (eb *EventBus) WaitAsync() {
	if !eb.config.IsEnabled() {
		return
	}
	eb.bus.WaitAsync()
}

// HasCallback 检查是否有回调
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	if !eb.config.IsEnabled() {
		return false
	}
	return eb.bus.HasCallback(string(eventType))
}
