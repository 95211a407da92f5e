package config

import "time"

// =============================================================================
// 🧱 默认配置
// =============================================================================

// DefaultConfig 返回完整的默认配置。
// 默认值面向本地开发：mock 提供商、内存存储、console 日志。
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			MetricsPort:     9090,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			Timeout:        60 * time.Second,
			RateLimitRPS:   5,
			RateLimitBurst: 10,
		},
		Engine: EngineConfig{
			ModeratorInterval:   1,
			Temperature:         0.8,
			MaxTokens:           300,
			ContextWindowTokens: 6000,
			TurnTimeout:         90 * time.Second,
		},
		Store: StoreConfig{
			Backend:    "memory",
			SQLitePath: "microcrowd.db",
			RedisAddr:  "localhost:6379",
			RedisTTL:   24 * time.Hour,
		},
		Log: LogConfig{
			Level:            "info",
			Format:           "console",
			OutputPaths:      []string{"stdout"},
			EnableCaller:     false,
			EnableStacktrace: false,
		},
	}
}
