// Package broadcast 提供日志条目的同步观察者注册表。
package broadcast

import (
	"testing"

	"github.com/oriys/cockpit/internal/domain"
	"github.com/sirupsen/logrus"
)

// testLogger 返回丢弃输出的日志记录器。
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// TestNotifyOrder 测试观察者按注册顺序被同步调用。
func TestNotifyOrder(t *testing.T) {
	b := New(testLogger())

	var order []string
	b.Subscribe(func([]domain.LogEntry) { order = append(order, "first") })
	b.Subscribe(func([]domain.LogEntry) { order = append(order, "second") })
	b.Subscribe(func([]domain.LogEntry) { order = append(order, "third") })

	b.Notify([]domain.LogEntry{{ID: "x"}})

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("got %d calls, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, order[i], want[i])
		}
	}
}

// TestNotifyEmptyBatch 测试空批次不触发任何回调。
func TestNotifyEmptyBatch(t *testing.T) {
	b := New(testLogger())

	called := false
	b.Subscribe(func([]domain.LogEntry) { called = true })
	b.Notify(nil)

	if called {
		t.Error("observer called for empty batch")
	}
}

// TestUnsubscribe 测试取消订阅后观察者不再收到通知，重复取消是空操作。
func TestUnsubscribe(t *testing.T) {
	b := New(testLogger())

	calls := 0
	unsubscribe := b.Subscribe(func([]domain.LogEntry) { calls++ })

	b.Notify([]domain.LogEntry{{ID: "a"}})
	unsubscribe()
	b.Notify([]domain.LogEntry{{ID: "b"}})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	// 重复调用不应 panic 或影响其他订阅
	unsubscribe()
	unsubscribe()
	if b.Count() != 0 {
		t.Errorf("Count() = %d, want 0", b.Count())
	}
}

// TestPanickingObserverIsolated 测试回调 panic 不妨碍其他观察者。
func TestPanickingObserverIsolated(t *testing.T) {
	b := New(testLogger())

	var survived bool
	b.Subscribe(func([]domain.LogEntry) { panic("observer exploded") })
	b.Subscribe(func([]domain.LogEntry) { survived = true })

	b.Notify([]domain.LogEntry{{ID: "x"}})

	if !survived {
		t.Error("second observer not called after first panicked")
	}
}

// TestObserverReceivesBatch 测试观察者收到完整的新增批次。
func TestObserverReceivesBatch(t *testing.T) {
	b := New(testLogger())

	var got []domain.LogEntry
	b.Subscribe(func(entries []domain.LogEntry) { got = entries })

	batch := []domain.LogEntry{{ID: "a"}, {ID: "b"}}
	b.Notify(batch)

	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("observer received %v, want the full batch", got)
	}
}
