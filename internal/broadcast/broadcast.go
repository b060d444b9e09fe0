// Package broadcast 提供日志条目的同步观察者注册表。
// 每次成功的存储变更（本地追加或轮询合并）之后，按注册顺序同步调用所有观察者。
// 观察者回调中的 panic 会被捕获，不会妨碍其他观察者或变更本身。
package broadcast

import (
	"sync"

	"github.com/oriys/cockpit/internal/domain"
	"github.com/sirupsen/logrus"
)

// Observer 在每次变更后收到新追加的条目批次。
type Observer func(entries []domain.LogEntry)

// Broadcaster 日志广播器。
type Broadcaster struct {
	mu        sync.Mutex
	observers map[uint64]Observer
	order     []uint64
	nextID    uint64
	logger    *logrus.Logger
}

// New 创建日志广播器。
func New(logger *logrus.Logger) *Broadcaster {
	return &Broadcaster{
		observers: make(map[uint64]Observer),
		logger:    logger,
	}
}

// Subscribe 注册观察者并返回取消订阅函数。
// 取消订阅函数可以安全地多次调用，重复调用是空操作。
func (b *Broadcaster) Subscribe(fn Observer) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.observers[id] = fn
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.observers, id)
			for i, oid := range b.order {
				if oid == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
			b.mu.Unlock()
		})
	}
}

// Notify 按注册顺序同步调用所有观察者。
// 回调在锁之外执行，因此观察者可以在回调中再次触发追加而不会死锁。
func (b *Broadcaster) Notify(entries []domain.LogEntry) {
	if len(entries) == 0 {
		return
	}

	b.mu.Lock()
	fns := make([]Observer, 0, len(b.order))
	for _, id := range b.order {
		if fn, ok := b.observers[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		b.invoke(fn, entries)
	}
}

// invoke 调用单个观察者并兜住 panic。
func (b *Broadcaster) invoke(fn Observer, entries []domain.LogEntry) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.WithField("panic", r).Warn("Log observer panicked")
		}
	}()
	fn(entries)
}

// Count 返回当前注册的观察者数量。
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers)
}
