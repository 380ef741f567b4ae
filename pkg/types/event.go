package types

// EventType 事件类型，采用"域.实体.动作"命名（如 gacha.pull.created）
type EventType string

// SubscriptionID 订阅标识
type SubscriptionID string
