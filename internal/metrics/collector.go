// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器。实现 engine.Recorder，由引擎在
// 会话启动、回合提交、生成失败与会话结束时回调。
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 会话指标
	conversationsStartedTotal  prometheus.Counter
	conversationsFinishedTotal *prometheus.CounterVec
	activeConversations        prometheus.Gauge

	// 回合指标
	turnsTotal              *prometheus.CounterVec
	turnDuration            *prometheus.HistogramVec
	generationFailuresTotal *prometheus.CounterVec

	// LLM 指标
	llmTokensUsed *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// HTTP 指标
	c.httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 会话指标
	c.conversationsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_started_total",
			Help:      "Total number of conversations started",
		},
	)

	c.conversationsFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_finished_total",
			Help:      "Total number of conversations that reached a terminal status",
		},
		[]string{"status"}, // completed, failed
	)

	c.activeConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_conversations",
			Help:      "Number of conversations currently active",
		},
	)

	// 回合指标
	c.turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of committed turns",
		},
		[]string{"speaker_kind"}, // moderator, persona
	)

	c.turnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Turn generation duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"speaker_kind"},
	)

	c.generationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_failures_total",
			Help:      "Total number of failed generation attempts",
		},
		[]string{"code"},
	)

	// LLM 指标
	c.llmTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens used",
		},
		[]string{"provider", "model", "type"}, // type: prompt, completion
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 engine.Recorder 实现
// =============================================================================

// ConversationStarted 记录会话启动
func (c *Collector) ConversationStarted() {
	c.conversationsStartedTotal.Inc()
	c.activeConversations.Inc()
}

// TurnCommitted 记录一次提交的回合
func (c *Collector) TurnCommitted(speakerKind string, duration time.Duration) {
	c.turnsTotal.WithLabelValues(speakerKind).Inc()
	c.turnDuration.WithLabelValues(speakerKind).Observe(duration.Seconds())
}

// GenerationFailed 记录生成失败
func (c *Collector) GenerationFailed(code string) {
	c.generationFailuresTotal.WithLabelValues(code).Inc()
}

// ConversationFinished 记录会话进入终止状态
func (c *Collector) ConversationFinished(status string) {
	c.conversationsFinishedTotal.WithLabelValues(status).Inc()
	c.activeConversations.Dec()
}

// =============================================================================
// 🤖 LLM 指标记录
// =============================================================================

// RecordLLMTokens 记录 token 用量
func (c *Collector) RecordLLMTokens(provider, model string, promptTokens, completionTokens int) {
	c.llmTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	c.llmTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
