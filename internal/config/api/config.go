package api

import (
	"time"

	configtypes "github.com/gachago/v1/pkg/types"
)

// APIOptions API服务配置选项
// 整个API模块的统一配置入口
type APIOptions struct {
	// HTTP API配置
	HTTP HTTPConfig `json:"http"`

	// 指标端点配置
	Metrics MetricsConfig `json:"metrics"`
}

// HTTPConfig HTTP API配置
type HTTPConfig struct {
	// 基础配置
	Enabled bool   `json:"enabled"` // 是否启用HTTP服务
	Host    string `json:"host"`    // 监听地址
	Port    int    `json:"port"`    // 监听端口

	// 超时配置
	Timeout      time.Duration `json:"timeout"`       // 请求超时时间
	ReadTimeout  time.Duration `json:"read_timeout"`  // 读取超时时间
	WriteTimeout time.Duration `json:"write_timeout"` // 写入超时时间

	// 安全限制
	MaxRequestSize int `json:"max_request_size"` // 最大请求大小(字节)
}

// MetricsConfig Prometheus指标端点配置
type MetricsConfig struct {
	Enabled bool   `json:"enabled"` // 是否暴露指标端点
	Path    string `json:"path"`    // 指标端点路径
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置实现
func New(userConfig *configtypes.UserAPIConfig) *Config {
	// 1. 先创建完整的默认配置
	defaultOptions := createDefaultAPIOptions()

	// 2. 如果有用户配置，则转换并覆盖默认配置
	if userConfig != nil {
		convertAndMergeUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// createDefaultAPIOptions 创建默认API配置
func createDefaultAPIOptions() *APIOptions {
	return &APIOptions{
		HTTP: HTTPConfig{
			Enabled:        defaultHTTPEnabled,
			Host:           defaultHTTPHost,
			Port:           defaultHTTPPort,
			Timeout:        defaultHTTPTimeout,
			ReadTimeout:    defaultHTTPReadTimeout,
			WriteTimeout:   defaultHTTPWriteTimeout,
			MaxRequestSize: defaultMaxRequestSize,
		},
		Metrics: MetricsConfig{
			Enabled: defaultMetricsEnabled,
			Path:    defaultMetricsPath,
		},
	}
}

// convertAndMergeUserConfig 将用户配置转换并合并到默认配置中
// 使用指针类型来准确区分"未设置"和"设置为零值"
func convertAndMergeUserConfig(defaultOpts *APIOptions, userConfig *configtypes.UserAPIConfig) {
	if userConfig.Host != nil {
		defaultOpts.HTTP.Host = *userConfig.Host
	}
	if userConfig.Port != nil {
		defaultOpts.HTTP.Port = *userConfig.Port
	}
	if userConfig.EnableMetrics != nil {
		defaultOpts.Metrics.Enabled = *userConfig.EnableMetrics
	}
}

// GetOptions 获取完整的API配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}

// GetHTTPConfig 获取HTTP配置
func (c *Config) GetHTTPConfig() *HTTPConfig {
	return &c.options.HTTP
}

// GetMetricsConfig 获取指标端点配置
func (c *Config) GetMetricsConfig() *MetricsConfig {
	return &c.options.Metrics
}
