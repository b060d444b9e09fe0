// Package domain 定义了运维驾驶舱（Cockpit）后端的核心领域模型。
package domain

// RemoteRecord 表示远端日志源返回的一条原始记录。
// 除 timestamp、level、message 外的字段都是可选的，
// 规范化时缺失字段用占位值补齐，而不是丢弃整条记录。
type RemoteRecord struct {
	// Timestamp 远端时间戳（RFC3339 / RFC3339Nano 字符串）
	Timestamp string `json:"timestamp"`
	// Level 远端级别字符串
	Level string `json:"level"`
	// Name 远端来源名称，映射到 Component
	Name string `json:"name,omitempty"`
	// FuncName 远端函数名，映射到 Function
	FuncName string `json:"funcName,omitempty"`
	// Module 远端模块名，Name 缺失时作为 Component 的回退
	Module string `json:"module,omitempty"`
	// Message 日志消息
	Message string `json:"message"`
	// Data 任意结构化负载
	Data map[string]any `json:"data,omitempty"`
}

// RemoteLogsResponse 是远端日志源 GET 接口的响应体。
// logs 数组缺失时视为没有新条目。
type RemoteLogsResponse struct {
	Logs []RemoteRecord `json:"logs"`
}
