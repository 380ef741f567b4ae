package api

import "time"

// API服务配置默认值
const (
	// === HTTP配置 ===

	// defaultHTTPEnabled 默认启用HTTP服务
	defaultHTTPEnabled = true

	// defaultHTTPHost 默认监听地址
	defaultHTTPHost = "0.0.0.0"

	// defaultHTTPPort 默认监听端口
	defaultHTTPPort = 8545

	// defaultHTTPTimeout 请求超时时间
	defaultHTTPTimeout = 30 * time.Second

	// defaultHTTPReadTimeout 读取超时时间
	defaultHTTPReadTimeout = 15 * time.Second

	// defaultHTTPWriteTimeout 写入超时时间
	defaultHTTPWriteTimeout = 15 * time.Second

	// defaultMaxRequestSize 最大请求大小（1MB）
	defaultMaxRequestSize = 1 << 20

	// === 指标配置 ===

	// defaultMetricsEnabled 默认启用Prometheus指标端点
	defaultMetricsEnabled = true

	// defaultMetricsPath 指标端点路径
	defaultMetricsPath = "/metrics"
)
