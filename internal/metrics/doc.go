/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖 HTTP、
会话生命周期、回合与 LLM Token 用量。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制，避免手动管理 Registry。所有指标按 namespace 隔离，
支持多维度 label 分组，便于 Grafana 等工具进行可视化与告警。

# 核心类型

  - Collector：指标收集器，实现引擎的 Recorder 回调接口，
    持有 Counter、Histogram、Gauge 等 Prometheus 指标。

# 主要能力

  - HTTP 指标：请求总数与请求耗时，按 method/path/status 分组，
    状态码归类为 2xx/3xx/4xx/5xx。
  - 会话指标：启动总数、终止总数（按 completed/failed 分组）、
    当前活跃会话数 Gauge。
  - 回合指标：提交回合总数与生成耗时（按 speaker_kind 分组）、
    生成失败计数（按错误码分组）。
  - LLM 指标：Token 用量（prompt/completion），按 provider/model 分组。
*/
package metrics
