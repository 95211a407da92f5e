// Package store 提供会话快照的持久化实现。
//
// 引擎以 write-behind 方式在每次回合提交后落盘；内存状态始终是权威数据，
// 存储层用于事后检索与进程重启后的会话归档查询。
//
// 提供三种实现：
//   - MemoryStore：进程内存储，测试与单机开发用
//   - GormStore：SQLite（纯 Go 驱动），默认的本地持久化
//   - RedisStore：带 TTL 的共享存储，多实例部署用
package store
