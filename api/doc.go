// Package api 定义 HTTP 层的请求/响应 DTO。
//
// DTO 与 types 包的领域类型分离：对外契约的字段命名与序列化格式
// 在这里固定，领域类型的演进不直接泄漏到 API。
package api
