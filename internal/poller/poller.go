package poller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oriys/cockpit/internal/domain"
	"github.com/oriys/cockpit/internal/metrics"
	"github.com/sirupsen/logrus"
)

// DefaultInterval 是默认的轮询间隔。
const DefaultInterval = 3 * time.Second

// Sink 定义轮询器合并条目所需的聚合服务接口。
type Sink interface {
	// Merge 将一批规范化后的远端条目按到达顺序追加
	Merge(entries []domain.LogEntry)
	// Workflow 返回当前工作流上下文快照，用于给远端条目盖戳
	Workflow() domain.WorkflowSnapshot
}

// Fetcher 定义拉取远端记录的接口，*Client 是默认实现。
type Fetcher interface {
	FetchSince(ctx context.Context, since time.Time) ([]domain.RemoteRecord, error)
}

// Poller 是可取消的周期性远端拉取任务。
//
// 状态机只有两个状态：Stopped（初始/终止）和 Polling。
// Start 在已处于 Polling 时先取消旧的运行再重启（幂等重启）；
// Stop 在已停止时是空操作。任意时刻最多只有一个拉取在途：
// 下一个周期只在前一个周期落定（成功或失败）之后才会调度，
// 因此远端延迟超过间隔时不会产生无限堆积的并发请求。
type Poller struct {
	mu        sync.Mutex
	client    Fetcher
	sink      Sink
	logger    *logrus.Logger
	metrics   *metrics.Metrics // 可为 nil
	watermark time.Time

	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New 创建轮询器。
func New(client Fetcher, sink Sink, logger *logrus.Logger, m *metrics.Metrics) *Poller {
	if logger == nil {
		logger = logrus.New()
	}
	return &Poller{
		client:  client,
		sink:    sink,
		logger:  logger,
		metrics: m,
	}
}

// SetWatermark 播种水位线（启动时从持久化恢复的最新时间戳）。
// 只应在 Start 之前调用。
func (p *Poller) SetWatermark(t time.Time) {
	p.mu.Lock()
	p.watermark = t
	p.mu.Unlock()
}

// Watermark 返回当前水位线。
func (p *Poller) Watermark() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watermark
}

// Running 返回轮询器是否处于 Polling 状态。
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start 启动轮询：先立即拉取一次，之后每 interval 拉取一次。
// 已在运行时先取消现有任务再重启。interval <= 0 时使用 DefaultInterval。
func (p *Poller) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.mu.Lock()
	if p.running {
		cancel, done := p.cancel, p.done
		p.mu.Unlock()
		cancel()
		<-done
		p.mu.Lock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.running = true
	p.mu.Unlock()

	p.logger.WithField("interval", interval.String()).Info("Remote log polling started")

	go p.run(ctx, interval, done)
}

// Stop 取消轮询并等待在途周期落定。已停止时是空操作。
// 取消后在途拉取的结果会被丢弃，不会在显式停止之后复活状态。
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.running = false
	p.mu.Unlock()

	cancel()
	<-done
	p.logger.Info("Remote log polling stopped")
}

// run 是轮询主循环。每个周期落定后才调度下一个周期。
func (p *Poller) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	p.cycle(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			p.cycle(ctx)
			timer.Reset(interval)
		}
	}
}

// cycle 执行一次拉取周期。
// 失败视为瞬态条件静默跳过，水位线保持不变，下一周期重试同一窗口。
func (p *Poller) cycle(ctx context.Context) {
	since := p.Watermark()

	records, err := p.client.FetchSince(ctx, since)
	if err != nil {
		if p.metrics != nil {
			p.metrics.PollCyclesTotal.WithLabelValues("error").Inc()
		}
		p.logger.WithError(err).Debug("Remote log fetch failed, will retry next cycle")
		return
	}

	// 取消后丢弃在途结果，避免在显式停止（例如 clear 前后）之后复活状态
	if ctx.Err() != nil {
		return
	}

	if len(records) == 0 {
		if p.metrics != nil {
			p.metrics.PollCyclesTotal.WithLabelValues("empty").Inc()
		}
		return
	}

	workflow := p.sink.Workflow()
	entries := make([]domain.LogEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Normalize(rec, workflow))
	}

	p.sink.Merge(entries)

	// 水位线推进到本批最后一条的时间戳（批内顺序信任来源）
	p.mu.Lock()
	p.watermark = entries[len(entries)-1].Timestamp
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.PollCyclesTotal.WithLabelValues("success").Inc()
		p.metrics.PollBatchSize.Observe(float64(len(entries)))
	}
}

// Normalize 将一条远端原始记录防御性地规范化为 LogEntry。
// 缺失字段用占位值补齐而不是拒绝整条记录，保证单条坏记录不会丢掉整批。
// 远端 GATE 级别映射到 GATE 分类，其余级别映射到 DEFAULT 分类。
func Normalize(rec domain.RemoteRecord, workflow domain.WorkflowSnapshot) domain.LogEntry {
	ts := parseTimestamp(rec.Timestamp)

	level := domain.ParseLevel(rec.Level)
	if level == domain.LevelAll {
		level = domain.LevelInfo
	}

	category := domain.CategoryDefault
	if level == domain.LevelGate {
		category = domain.CategoryGate
	}

	component := rec.Name
	if component == "" {
		component = rec.Module
	}
	if component == "" {
		component = "remote"
	}

	return domain.LogEntry{
		// 远端源不保证提供稳定 ID，用时间戳加随机后缀合成（唯一性尽力而为）
		ID:        fmt.Sprintf("%d-%s", ts.UnixNano(), shortID()),
		Timestamp: ts,
		Level:     level,
		Category:  category,
		Component: component,
		Function:  rec.FuncName,
		Message:   rec.Message,
		Data:      rec.Data,
		Workflow:  workflow,
		Source:    domain.SourceRemote,
	}
}

// parseTimestamp 解析远端时间戳，解析失败时退回当前时间。
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now()
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts
	}
	return time.Now()
}

// shortID 返回 uuid 的前 8 位。
func shortID() string {
	return uuid.NewString()[:8]
}
