// Package metrics 提供基于Prometheus的运行指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics 抽取协议的运行指标集合
type Metrics struct {
	registry *prometheus.Registry

	// PullsCreated 已创建的抽取槽位总数
	PullsCreated prometheus.Counter

	// PullsVerified 通过承诺校验的抽取总数
	PullsVerified prometheus.Counter

	// PullsBought 已售出的抽取总数
	PullsBought prometheus.Counter

	// PullsClaimed 已揭示的抽取总数
	PullsClaimed prometheus.Counter

	// OperationErrors 按操作与错误类别统计的失败次数
	OperationErrors *prometheus.CounterVec

	// ProofVerifications 按证明类型统计的证明上下文校验次数
	ProofVerifications *prometheus.CounterVec
}

// New 创建并注册指标集合
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		PullsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gacha",
			Name:      "pulls_created_total",
			Help:      "Total number of pulls created.",
		}),
		PullsVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gacha",
			Name:      "pulls_verified_total",
			Help:      "Total number of pulls that passed commitment verification.",
		}),
		PullsBought: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gacha",
			Name:      "pulls_bought_total",
			Help:      "Total number of pulls purchased.",
		}),
		PullsClaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gacha",
			Name:      "pulls_claimed_total",
			Help:      "Total number of pulls revealed and claimed.",
		}),
		OperationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gacha",
			Name:      "operation_errors_total",
			Help:      "Total number of failed operations by operation name.",
		}, []string{"operation"}),
		ProofVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gacha",
			Name:      "proof_verifications_total",
			Help:      "Total number of proof context verifications by proof type and result.",
		}, []string{"proof_type", "result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PullsCreated,
		m.PullsVerified,
		m.PullsBought,
		m.PullsClaimed,
		m.OperationErrors,
		m.ProofVerifications,
	)

	return m
}

// Registry 返回底层的Prometheus注册表（供HTTP端点暴露）
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
