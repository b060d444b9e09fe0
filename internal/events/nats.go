// Package events 提供日志条目向外部观察者的事件扇出。
// 当前实现基于 NATS JetStream：每次合并到缓冲区的条目批次都会作为一条
// JSON 事件发布到固定主题，供驾驶舱之外的订阅方（告警、归档等）消费。
// 扇出是可选能力，发布失败只记录诊断，不影响变更路径。
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/oriys/cockpit/internal/domain"
	"github.com/sirupsen/logrus"
)

// streamName 是日志事件使用的 JetStream Stream 名称。
const streamName = "COCKPIT_LOGS"

// Publisher 封装 NATS/JetStream 连接与日志事件发布。
type Publisher struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
	logger  *logrus.Logger
}

// LogBatchEvent 表示一批被合并的日志条目（JSON 格式）。
type LogBatchEvent struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Source    string            `json:"source"`
	Entries   []domain.LogEntry `json:"entries"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewPublisher 创建 Publisher 并初始化所需的 JetStream Stream。
func NewPublisher(natsURL, subject string, logger *logrus.Logger) (*Publisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	// Stream 已存在时 AddStream 返回错误，忽略即可
	_, err = js.AddStream(&nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subject},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		logger.WithError(err).Debug("JetStream stream setup skipped")
	}

	return &Publisher{
		conn:    nc,
		js:      js,
		subject: subject,
		logger:  logger,
	}, nil
}

// PublishBatch 将一批条目作为单条事件发布。
func (p *Publisher) PublishBatch(entries []domain.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	event := &LogBatchEvent{
		ID:        uuid.NewString(),
		Type:      "logs.merged",
		Source:    "cockpit-aggregator",
		Entries:   entries,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := p.js.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish log batch: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"subject": p.subject,
		"count":   len(entries),
	}).Debug("Log batch published")
	return nil
}

// Observer 返回一个可注册到聚合服务的观察者回调。
// 发布失败只记录警告，不会妨碍其他观察者。
func (p *Publisher) Observer() func(entries []domain.LogEntry) {
	return func(entries []domain.LogEntry) {
		if err := p.PublishBatch(entries); err != nil {
			p.logger.WithError(err).Warn("Failed to fan out log batch")
		}
	}
}

// Close 关闭 NATS 连接。
func (p *Publisher) Close() {
	p.conn.Close()
}
