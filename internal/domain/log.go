// Package domain 定义了运维驾驶舱（Cockpit）后端的核心领域模型。
package domain

import (
	"time"
)

// Level 表示日志条目的严重级别。
type Level string

const (
	// LevelDebug 调试信息
	LevelDebug Level = "DEBUG"
	// LevelInfo 常规信息
	LevelInfo Level = "INFO"
	// LevelWarn 警告
	LevelWarn Level = "WARN"
	// LevelError 错误
	LevelError Level = "ERROR"
	// LevelAudit 审计记录（如工作流转换）
	LevelAudit Level = "AUDIT"
	// LevelGate 质量门（Gate）判定记录
	LevelGate Level = "GATE"
)

// LevelAll 是过滤器使用的哨兵值，表示不按级别过滤。
const LevelAll Level = "ALL"

// Category 表示日志条目的分类，仅用于过滤，不参与排序和淘汰。
type Category string

const (
	// CategoryDefault 默认分类
	CategoryDefault Category = "DEFAULT"
	// CategoryGate 质量门相关
	CategoryGate Category = "GATE"
	// CategoryClick 界面点击事件
	CategoryClick Category = "CLICK"
	// CategoryNetwork 网络请求相关
	CategoryNetwork Category = "NETWORK"
	// CategoryMode 模式切换相关
	CategoryMode Category = "MODE"
	// CategoryTemplate 模板生成相关
	CategoryTemplate Category = "TEMPLATE"
	// CategoryFallback 降级路径相关
	CategoryFallback Category = "FALLBACK"
)

// CategoryAll 是过滤器使用的哨兵值，表示不按分类过滤。
const CategoryAll Category = "ALL"

// Source 表示日志条目的来源。
type Source string

const (
	// SourceLocal 本地调用产生的条目
	SourceLocal Source = "local"
	// SourceRemote 远端轮询合并的条目
	SourceRemote Source = "remote"
)

// WorkflowSnapshot 是创建日志条目时从工作流上下文拍下的快照。
// 快照一经附加到条目上即不再变化，后续的工作流转换不会回溯修改历史条目。
type WorkflowSnapshot struct {
	Name        string     `json:"name"`
	Step        int        `json:"step"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CurrentStep string     `json:"current_step,omitempty"`
}

// LogEntry 表示一条被观测到的日志事件。
// 条目在创建后不可变；需要"修改"时应创建并追加一条新条目。
type LogEntry struct {
	// ID 不透明的唯一标识。本地条目由 uuid 生成；
	// 远端条目由轮询器根据远端时间戳加随机后缀合成（远端源不保证提供稳定 ID）。
	ID string `json:"id"`
	// Timestamp 条目时间戳，是唯一的排序键。
	Timestamp time.Time `json:"timestamp"`
	// Level 严重级别
	Level Level `json:"level"`
	// Category 分类，仅用于过滤
	Category Category `json:"category"`
	// Component 来源组件（自由文本）
	Component string `json:"component"`
	// Function 来源函数（自由文本）
	Function string `json:"function"`
	// Message 人类可读的描述
	Message string `json:"message"`
	// Data 任意结构化负载，创建时附加，存储侧从不截断
	Data map[string]any `json:"data,omitempty"`
	// Workflow 创建时刻的工作流上下文快照
	Workflow WorkflowSnapshot `json:"workflow"`
	// Source 条目来源（local / remote）
	Source Source `json:"source"`
}

// Filter 描述读取侧的过滤条件。
// Level 和 Category 使用 "ALL" 哨兵值表示不限制；
// Component 为大小写不敏感的子串匹配；
// Search 对 Message 或 Data 的 JSON 序列化结果做大小写不敏感的子串匹配。
type Filter struct {
	Level     Level    `json:"level"`
	Category  Category `json:"category"`
	Component string   `json:"component"`
	Search    string   `json:"search"`
}

// NewFilter 返回一个不过滤任何条目的 Filter。
func NewFilter() Filter {
	return Filter{Level: LevelAll, Category: CategoryAll}
}

// ParseLevel 将字符串解析为 Level。空字符串视为 ALL，大小写不敏感。
func ParseLevel(s string) Level {
	switch s {
	case "", "all", "ALL", "All":
		return LevelAll
	case "debug", "DEBUG", "Debug":
		return LevelDebug
	case "info", "INFO", "Info":
		return LevelInfo
	case "warn", "WARN", "Warn", "warning", "WARNING":
		return LevelWarn
	case "error", "ERROR", "Error", "err", "ERR":
		return LevelError
	case "audit", "AUDIT", "Audit":
		return LevelAudit
	case "gate", "GATE", "Gate":
		return LevelGate
	default:
		return Level(s)
	}
}

// ParseCategory 将字符串解析为 Category。空字符串视为 ALL，大小写不敏感。
func ParseCategory(s string) Category {
	switch s {
	case "", "all", "ALL", "All":
		return CategoryAll
	case "default", "DEFAULT", "Default":
		return CategoryDefault
	case "gate", "GATE", "Gate":
		return CategoryGate
	case "click", "CLICK", "Click":
		return CategoryClick
	case "network", "NETWORK", "Network":
		return CategoryNetwork
	case "mode", "MODE", "Mode":
		return CategoryMode
	case "template", "TEMPLATE", "Template":
		return CategoryTemplate
	case "fallback", "FALLBACK", "Fallback":
		return CategoryFallback
	default:
		return Category(s)
	}
}
