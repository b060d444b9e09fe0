// Package persist 提供日志尾部窗口的持久化边界。
// 持久化是一个固定键名下的键值槽位，保存最近 PersistLogs 条条目的 JSON 序列化结果；
// 进程启动时读取一次用于恢复内存缓冲区和远端水位线，之后每次变更都会整体覆写。
// 持久化失败不致命：写入被跳过，内存侧继续工作。
package persist

import (
	"context"

	"github.com/oriys/cockpit/internal/domain"
)

// DefaultPersistLogs 是持久化窗口的默认大小，小于内存缓冲区容量。
const DefaultPersistLogs = 200

// Store 是持久化槽位的抽象。
type Store interface {
	// Save 将尾部窗口整体覆写到槽位
	Save(ctx context.Context, entries []domain.LogEntry) error
	// Load 读取槽位内容；槽位不存在时返回空切片和 nil 错误
	Load(ctx context.Context) ([]domain.LogEntry, error)
	// Clear 删除整个槽位
	Clear(ctx context.Context) error
	// Close 释放底层连接
	Close() error
}
