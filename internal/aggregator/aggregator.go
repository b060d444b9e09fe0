// Package aggregator 实现日志聚合与实时订阅服务。
// 该服务将本地产生的诊断事件与远端轮询合并的事件汇入同一个按时间排序、
// 容量受限的缓冲区，每次变更后持久化尾部窗口并同步通知所有观察者。
//
// 变更路径（本地 Log 调用与轮询合并共用）：
//
//	盖戳 -> 追加/淘汰 -> 持久化尾部窗口 -> 广播通知
//
// 所有逻辑变更由单一互斥锁串行化，保证"每次变更恰好通知一次"的契约；
// 广播在变更完全提交、锁释放之后进行，观察者在回调中再次追加不会死锁。
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oriys/cockpit/internal/broadcast"
	"github.com/oriys/cockpit/internal/domain"
	"github.com/oriys/cockpit/internal/logstore"
	"github.com/oriys/cockpit/internal/metrics"
	"github.com/oriys/cockpit/internal/persist"
	"github.com/sirupsen/logrus"
)

// persistTimeout 是单次持久化写入的超时上限。
const persistTimeout = 2 * time.Second

// Service 是日志聚合服务实例。
// 工作流上下文由 Service 独占持有，不使用包级全局变量。
type Service struct {
	mu sync.Mutex // 串行化所有逻辑变更（追加、清空、工作流转换）

	store       *logstore.Store
	persistence persist.Store // 可为 nil（无持久化运行）
	persistLogs int
	broadcaster *broadcast.Broadcaster
	metrics     *metrics.Metrics // 可为 nil
	logger      *logrus.Logger

	workflow domain.WorkflowSnapshot
}

// Options 配置聚合服务。
type Options struct {
	// MaxLogs 内存缓冲区容量，<= 0 时使用默认值
	MaxLogs int
	// PersistLogs 持久化窗口大小，<= 0 时使用默认值
	PersistLogs int
	// Persistence 持久化槽位，nil 表示无持久化运行
	Persistence persist.Store
	// Metrics 指标集合，可为 nil
	Metrics *metrics.Metrics
	// Logger 诊断日志记录器
	Logger *logrus.Logger
}

// New 创建日志聚合服务。工作流上下文初始为 {name: "idle", step: 0}。
func New(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.PersistLogs <= 0 {
		opts.PersistLogs = persist.DefaultPersistLogs
	}
	return &Service{
		store:       logstore.New(opts.MaxLogs),
		persistence: opts.Persistence,
		persistLogs: opts.PersistLogs,
		broadcaster: broadcast.New(opts.Logger),
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		workflow:    domain.WorkflowSnapshot{Name: "idle", Step: 0},
	}
}

// Log 创建并追加一条本地条目，返回追加后的条目。
// 条目使用当前工作流上下文快照和新生成的标识盖戳。
// 输入不做模式校验，意外形状原样进入 Data。
func (s *Service) Log(level domain.Level, component, function, message string, data map[string]any, category domain.Category) domain.LogEntry {
	if category == "" {
		category = domain.CategoryDefault
	}

	s.mu.Lock()
	entry := domain.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Level:     level,
		Category:  category,
		Component: component,
		Function:  function,
		Message:   message,
		Data:      data,
		Workflow:  s.workflow,
		Source:    domain.SourceLocal,
	}
	batch := []domain.LogEntry{entry}
	s.commitLocked(batch)
	s.mu.Unlock()

	s.broadcaster.Notify(batch)

	// 本地条目回显到进程诊断日志
	s.logger.WithFields(logrus.Fields{
		"component": component,
		"function":  function,
		"level":     string(level),
	}).Debug(message)

	return entry
}

// Merge 将轮询器规范化后的一批远端条目按到达顺序追加。
// 整批恰好触发一次持久化和一次广播通知。
func (s *Service) Merge(entries []domain.LogEntry) {
	if len(entries) == 0 {
		return
	}
	s.mu.Lock()
	s.commitLocked(entries)
	s.mu.Unlock()

	s.broadcaster.Notify(entries)
}

// commitLocked 执行追加、淘汰和持久化。调用方必须持有 s.mu。
func (s *Service) commitLocked(entries []domain.LogEntry) {
	evicted := s.store.Append(entries...)

	if s.metrics != nil {
		for _, e := range entries {
			s.metrics.EntriesTotal.WithLabelValues(string(e.Level), string(e.Source)).Inc()
		}
		if evicted > 0 {
			s.metrics.EvictionsTotal.Add(float64(evicted))
		}
		s.metrics.StoreSize.Set(float64(s.store.Len()))
	}

	s.persistLocked()
}

// persistLocked 将最近 persistLogs 条条目覆写到持久化槽位。
// 失败不致命：记录警告后内存侧继续工作，本次写入不具备持久性。
func (s *Service) persistLocked() {
	if s.persistence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.persistence.Save(ctx, s.store.Recent(s.persistLogs)); err != nil {
		if s.metrics != nil {
			s.metrics.PersistFailuresTotal.Inc()
		}
		s.logger.WithError(err).Warn("Failed to persist log window")
	}
}

// GetLogs 返回满足过滤条件的条目快照，按时间戳升序排列。
func (s *Service) GetLogs(f domain.Filter) []domain.LogEntry {
	return s.store.Query(f)
}

// GetAll 返回全部条目的快照，按时间戳升序排列。
func (s *Service) GetAll() []domain.LogEntry {
	return s.store.Snapshot()
}

// Clear 清空缓冲区并删除持久化槽位。
// 远端水位线不在此重置，随后的轮询不会重新拉取历史。
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Clear()
	if s.metrics != nil {
		s.metrics.StoreSize.Set(0)
	}
	if s.persistence != nil {
		if err := s.persistence.Clear(ctx); err != nil {
			s.logger.WithError(err).Warn("Failed to clear persisted log window")
			return err
		}
	}
	return nil
}

// Subscribe 注册观察者并返回取消订阅函数。
// 每次成功变更后观察者按注册顺序被同步调用，收到新追加的条目批次。
func (s *Service) Subscribe(fn broadcast.Observer) func() {
	unsubscribe := s.broadcaster.Subscribe(fn)
	if s.metrics != nil {
		s.metrics.Subscribers.Set(float64(s.broadcaster.Count()))
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			if s.metrics != nil {
				s.metrics.Subscribers.Set(float64(s.broadcaster.Count()))
			}
		})
	}
}

// ExportJSON 以美化缩进的 JSON 返回当前全部条目，供调用方写入文件或剪贴板。
func (s *Service) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s.store.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export logs: %w", err)
	}
	return data, nil
}

// Len 返回当前缓冲区条目数。
func (s *Service) Len() int {
	return s.store.Len()
}

// SeedFromPersistence 在启动时从持久化槽位恢复缓冲区。
// 返回恢复的条目数和其中最新条目的时间戳（用于播种远端水位线，
// 使重启后不会重新拉取已保留的历史）。
// 槽位缺失或损坏不致命：记录警告后以空缓冲区继续。
func (s *Service) SeedFromPersistence(ctx context.Context) (int, time.Time) {
	if s.persistence == nil {
		return 0, time.Time{}
	}

	entries, err := s.persistence.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to restore persisted logs, starting empty")
		return 0, time.Time{}
	}
	if len(entries) == 0 {
		return 0, time.Time{}
	}

	s.mu.Lock()
	s.store.Seed(entries)
	if s.metrics != nil {
		s.metrics.StoreSize.Set(float64(s.store.Len()))
	}
	s.mu.Unlock()

	var newest time.Time
	for _, e := range entries {
		if e.Timestamp.After(newest) {
			newest = e.Timestamp
		}
	}
	return len(entries), newest
}
