// Package handlers 实现 HTTP 请求处理器。
//
// 路由一览：
//
//	GET  /health                                  健康检查
//	GET  /ready                                   就绪检查（含依赖探测）
//	POST /api/conversations/start                 启动会话
//	POST /api/conversations/{id}/next-response    推进一个回合
//	GET  /api/conversations/{id}                  查询会话状态与转写
//
// 所有响应使用统一信封 {success, data, error, timestamp}。
package handlers
