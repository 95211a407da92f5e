package llm

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"
)

// =============================================================================
// 🚦 Provider 限流包装器
// =============================================================================

// RateLimitedProvider 以令牌桶限制下游 Provider 的请求速率。
// 超过速率的请求在 ctx 允许的范围内等待令牌；ctx 取消则直接失败，
// 不会向上游发出请求。
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider 创建限流包装器。rps 为每秒请求数，burst 为桶容量。
func NewRateLimitedProvider(inner Provider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (p *RateLimitedProvider) Name() string { return p.inner.Name() }

func (p *RateLimitedProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &Error{
			Code:       ErrRateLimited,
			Message:    "local rate limit wait aborted: " + err.Error(),
			HTTPStatus: http.StatusTooManyRequests,
			Retryable:  true,
			Provider:   p.inner.Name(),
		}
	}
	return p.inner.Completion(ctx, req)
}

// HealthCheck 不消耗令牌，直接透传。
func (p *RateLimitedProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	return p.inner.HealthCheck(ctx)
}
