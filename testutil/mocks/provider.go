// MockProvider 的 LLM 提供商测试模拟实现。
//
// 支持固定响应、按序脚本响应与错误注入场景。
package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/microcrowd/engine/llm"
)

// MockProvider 是 llm.Provider 的模拟实现。
type MockProvider struct {
	mu sync.Mutex

	// 固定响应内容；scripted 非空时按序出队
	content  string
	scripted []string

	// 错误注入：err 非 nil 时接下来 failCount 次调用失败（failCount<0 表示始终失败）
	err       error
	failCount int

	// 调用记录
	calls    int
	requests []*llm.ChatRequest

	// 模拟延迟
	latency time.Duration
}

// NewMockProvider 创建默认成功的模拟提供者。
func NewMockProvider() *MockProvider {
	return &MockProvider{content: "mock response"}
}

// WithContent 设置固定响应内容。
func (m *MockProvider) WithContent(content string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
	return m
}

// WithScript 设置按序返回的响应序列；耗尽后回落到固定内容。
func (m *MockProvider) WithScript(responses ...string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = append([]string{}, responses...)
	return m
}

// WithError 注入错误：接下来 count 次调用返回 err（count<0 表示始终返回）。
func (m *MockProvider) WithError(err error, count int) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	m.failCount = count
	return m
}

// WithLatency 设置每次调用的模拟延迟。
func (m *MockProvider) WithLatency(d time.Duration) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
	return m
}

// Calls 返回 Completion 被调用的次数。
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests 返回记录的请求副本。
func (m *MockProvider) Requests() []*llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*llm.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest 返回最近一次请求，无调用时返回 nil。
func (m *MockProvider) LastRequest() *llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)

	latency := m.latency
	if m.err != nil && m.failCount != 0 {
		err := m.err
		if m.failCount > 0 {
			m.failCount--
		}
		m.mu.Unlock()
		return nil, err
	}

	content := m.content
	if len(m.scripted) > 0 {
		content = m.scripted[0]
		m.scripted = m.scripted[1:]
	}
	call := m.calls
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-ctx.Done():
			return nil, &llm.Error{
				Code:      llm.ErrUpstreamTimeout,
				Message:   ctx.Err().Error(),
				Retryable: true,
				Provider:  "mock",
			}
		case <-time.After(latency):
		}
	}

	return &llm.ChatResponse{
		ID:       fmt.Sprintf("mock-%d", call),
		Provider: "mock",
		Model:    req.Model,
		Choices: []llm.ChatChoice{{
			Index:        0,
			FinishReason: "stop",
			Message:      llm.Message{Role: llm.RoleAssistant, Content: content},
		}},
		Usage:     llm.ChatUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true, Latency: time.Millisecond}, nil
}
