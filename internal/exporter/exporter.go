// Package exporter 提供日志快照的定时导出。
// 按 cron 表达式周期性地把当前全部日志的美化 JSON 写入目录下的时间戳文件，
// 供运维人员留档或离线分析。
package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Source 定义导出器所需的日志来源接口。
type Source interface {
	ExportJSON() ([]byte, error)
	Len() int
}

// Exporter 管理定时导出任务。
type Exporter struct {
	cron   *cron.Cron
	source Source
	dir    string
	logger *logrus.Logger
}

// New 创建导出器。dir 为导出文件写入目录。
func New(source Source, dir string, logger *logrus.Logger) *Exporter {
	return &Exporter{
		cron:   cron.New(cron.WithSeconds()), // 支持秒级
		source: source,
		dir:    dir,
		logger: logger,
	}
}

// Start 按 cron 表达式调度导出任务并启动调度器。
func (e *Exporter) Start(schedule string) error {
	if _, err := e.cron.AddFunc(schedule, e.export); err != nil {
		return fmt.Errorf("invalid export schedule %q: %w", schedule, err)
	}
	e.cron.Start()
	e.logger.WithField("schedule", schedule).Info("Log export scheduler started")
	return nil
}

// Stop 停止调度器，等待在途任务完成。
func (e *Exporter) Stop() {
	ctx := e.cron.Stop()
	<-ctx.Done()
}

// export 执行一次导出。缓冲区为空时跳过。
func (e *Exporter) export() {
	if e.source.Len() == 0 {
		return
	}

	data, err := e.source.ExportJSON()
	if err != nil {
		e.logger.WithError(err).Warn("Failed to render log export")
		return
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		e.logger.WithError(err).Warn("Failed to create export directory")
		return
	}

	name := "cockpit-logs-" + time.Now().Format("20060102-150405") + ".json"
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		e.logger.WithError(err).Warn("Failed to write log export")
		return
	}

	e.logger.WithField("path", path).Info("Log export written")
}
