// microcrowd 是多 persona 焦点小组会话引擎的服务入口。
//
// 启动流程：加载配置 → 初始化日志 → 构建 LLM 提供者与生成器 →
// 构建快照存储与引擎 → 注册路由 → 启动业务与指标两个 HTTP 服务。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/microcrowd/engine/api/handlers"
	"github.com/microcrowd/engine/config"
	"github.com/microcrowd/engine/engine"
	"github.com/microcrowd/engine/internal/metrics"
	"github.com/microcrowd/engine/internal/server"
	"github.com/microcrowd/engine/llm"
	"github.com/microcrowd/engine/llm/providers"
	"github.com/microcrowd/engine/llm/providers/openai"
	"github.com/microcrowd/engine/llm/tokenizer"
	"github.com/microcrowd/engine/store"
	"github.com/microcrowd/engine/testutil/mocks"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.NewLoader().
		WithConfigPath(*configPath).
		WithValidator(func(c *config.Config) error { return c.Validate() }).
		Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "microcrowd: %v\n", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "microcrowd: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("service failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	collector := metrics.NewCollector("microcrowd", logger)

	// LLM 提供者：构建后放入注册表，后续一律从注册表解析
	base, err := buildProvider(cfg, logger)
	if err != nil {
		return err
	}

	registry := llm.NewProviderRegistry()
	registry.Register(cfg.LLM.Provider, base)
	if err := registry.SetDefault(cfg.LLM.Provider); err != nil {
		return err
	}
	provider, err := registry.Default()
	if err != nil {
		return err
	}

	// 生成器
	tok := tokenizer.ForModel(cfg.LLM.Model)
	window := engine.NewWindow(tok, cfg.Engine.ContextWindowTokens)
	generator := engine.NewLLMGenerator(provider, engine.GeneratorConfig{
		Model:               cfg.LLM.Model,
		Temperature:         float32(cfg.Engine.Temperature),
		MaxTokens:           cfg.Engine.MaxTokens,
		ContextWindowTokens: cfg.Engine.ContextWindowTokens,
		Timeout:             cfg.Engine.TurnTimeout,
	}, window, logger)
	generator.SetTokenRecorder(collector)

	// 快照存储
	snapshots, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	// 引擎
	eng := engine.NewEngine(generator, engine.Config{
		ModeratorInterval: cfg.Engine.ModeratorInterval,
	}, logger,
		engine.WithRecorder(collector),
		engine.WithSnapshotter(snapshots),
	)

	// 路由
	health := handlers.NewHealthHandler(logger)
	health.RegisterCheck(handlers.NewPingHealthCheck("llm_provider", func(ctx context.Context) error {
		p, ok := registry.Get(cfg.LLM.Provider)
		if !ok {
			return fmt.Errorf("provider %q not registered", cfg.LLM.Provider)
		}
		status, err := p.HealthCheck(ctx)
		if err != nil {
			return err
		}
		if !status.Healthy {
			return fmt.Errorf("provider reported unhealthy after %s", status.Latency)
		}
		return nil
	}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.HandleHealth)
	mux.HandleFunc("GET /ready", health.HandleReady)
	handlers.NewConversationHandler(eng, logger).RegisterRoutes(mux)

	apiServer := server.NewManager(instrument(collector, mux), server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     server.DefaultConfig().IdleTimeout,
		MaxHeaderBytes:  server.DefaultConfig().MaxHeaderBytes,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", promhttp.Handler())
	metricsServer := server.NewManager(metricsMux, server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     server.DefaultConfig().IdleTimeout,
		MaxHeaderBytes:  server.DefaultConfig().MaxHeaderBytes,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	var g errgroup.Group
	g.Go(apiServer.Start)
	g.Go(metricsServer.Start)
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("microcrowd engine started",
		zap.Int("http_port", cfg.Server.HTTPPort),
		zap.Int("metrics_port", cfg.Server.MetricsPort),
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
		zap.String("store", cfg.Store.Backend),
	)

	apiServer.WaitForShutdown()
	return metricsServer.Shutdown(context.Background())
}

// buildProvider 按配置构建 LLM 提供者，可选套上本地限流。
func buildProvider(cfg *config.Config, logger *zap.Logger) (llm.Provider, error) {
	var provider llm.Provider
	switch cfg.LLM.Provider {
	case "openai":
		provider = openai.NewOpenAIProvider(providers.OpenAIConfig{
			BaseProviderConfig: providers.BaseProviderConfig{
				APIKey:  cfg.LLM.APIKey,
				BaseURL: cfg.LLM.BaseURL,
				Model:   cfg.LLM.Model,
				Timeout: cfg.LLM.Timeout,
			},
		}, logger)
	case "mock":
		provider = mocks.NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}

	if cfg.LLM.RateLimitRPS > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.LLM.RateLimitRPS, cfg.LLM.RateLimitBurst)
	}
	return provider, nil
}

// buildStore 按配置构建快照存储。
func buildStore(cfg *config.Config, logger *zap.Logger) (store.SnapshotStore, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		return store.NewGormStore(cfg.Store.SQLitePath, logger)
	case "redis":
		return store.NewRedisStore(store.RedisConfig{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
			TTL:      cfg.Store.RedisTTL,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildLogger 按配置构建 zap 日志器。
func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}
	zc.DisableCaller = !cfg.EnableCaller
	zc.DisableStacktrace = !cfg.EnableStacktrace

	return zc.Build()
}

// instrument 以指标中间件包装路由。
func instrument(c *metrics.Collector, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := handlers.NewResponseWriter(w)
		start := time.Now()
		next.ServeHTTP(rw, r)
		c.RecordHTTPRequest(r.Method, r.URL.Path, rw.StatusCode, time.Since(start))
	})
}
