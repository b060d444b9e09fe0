// Package logstore 提供容量受限、按时间排序的内存日志缓冲区。
// 缓冲区按 FIFO 方式淘汰：追加超过容量时从头部删除最旧的条目。
// 所有操作都是并发安全的。
package logstore

import (
	"sort"
	"sync"

	"github.com/oriys/cockpit/internal/domain"
)

// DefaultMaxLogs 是缓冲区的默认容量。
const DefaultMaxLogs = 1000

// Store 是固定容量的日志环形缓冲区。
// 条目大致按时间单调到达，因此淘汰按插入位置（FIFO）进行，
// 读取时再按时间戳排序，以容忍本地/远端几乎同时到达造成的轻微乱序。
type Store struct {
	mu      sync.RWMutex
	entries []domain.LogEntry
	maxLogs int
	evicted uint64 // 累计淘汰条数
}

// New 创建一个容量为 maxLogs 的 Store。maxLogs <= 0 时使用默认容量。
func New(maxLogs int) *Store {
	if maxLogs <= 0 {
		maxLogs = DefaultMaxLogs
	}
	return &Store{
		entries: make([]domain.LogEntry, 0, maxLogs),
		maxLogs: maxLogs,
	}
}

// Append 将条目追加到尾部；超过容量时从头部淘汰直至大小等于容量。
// 返回本次调用淘汰的条数。
func (s *Store) Append(entries ...domain.LogEntry) int {
	if len(entries) == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entries...)
	over := len(s.entries) - s.maxLogs
	if over > 0 {
		s.entries = s.entries[over:]
		s.evicted += uint64(over)
		return over
	}
	return 0
}

// Seed 用持久化窗口恢复的条目重置缓冲区内容。仅在启动时使用。
func (s *Store) Seed(entries []domain.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.entries[:0]
	s.entries = append(s.entries, entries...)
	over := len(s.entries) - s.maxLogs
	if over > 0 {
		s.entries = s.entries[over:]
	}
}

// Snapshot 返回当前全部条目的副本，按时间戳升序排列。
func (s *Store) Snapshot() []domain.LogEntry {
	s.mu.RLock()
	result := make([]domain.LogEntry, len(s.entries))
	copy(result, s.entries)
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result
}

// Query 返回满足过滤条件的条目快照，按时间戳升序排列。
func (s *Store) Query(f domain.Filter) []domain.LogEntry {
	all := s.Snapshot()
	result := make([]domain.LogEntry, 0, len(all))
	for _, e := range all {
		if Matches(&e, f) {
			result = append(result, e)
		}
	}
	return result
}

// Recent 返回最新的 n 条条目（按时间戳升序），用于持久化尾部窗口。
func (s *Store) Recent(n int) []domain.LogEntry {
	all := s.Snapshot()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Clear 同步清空缓冲区。
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = s.entries[:0]
	s.mu.Unlock()
}

// Len 返回当前条目数量。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Evicted 返回累计被淘汰的条目数量。
func (s *Store) Evicted() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evicted
}

// Cap 返回缓冲区容量。
func (s *Store) Cap() int {
	return s.maxLogs
}
