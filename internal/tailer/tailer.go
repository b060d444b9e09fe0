// Package tailer 跟随管线进程写入的日志文件，把新行解析为本地日志条目。
// 管线以 "时间 | 级别 | 名称 | 消息" 的行格式写日志；解析失败的行
// 以原文作为消息、INFO 级别兜底，保证单条坏行不会中断采集。
package tailer

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oriys/cockpit/internal/domain"
	"github.com/sirupsen/logrus"
)

// pipeTimeLayout 是管线日志的时间格式（Python logging 的默认 asctime）。
const pipeTimeLayout = "2006-01-02 15:04:05,000"

// Sink 定义采集器写入条目所需的聚合服务接口。
type Sink interface {
	Log(level domain.Level, component, function, message string, data map[string]any, category domain.Category) domain.LogEntry
}

// Tailer 跟随单个日志文件的追加写入。
type Tailer struct {
	path   string
	sink   Sink
	logger *logrus.Logger

	offset int64
}

// New 创建文件采集器。
func New(path string, sink Sink, logger *logrus.Logger) *Tailer {
	return &Tailer{
		path:   path,
		sink:   sink,
		logger: logger,
	}
}

// Run 阻塞运行采集循环，直到 ctx 取消。
// 启动时从文件当前末尾开始跟随（不回放历史），文件被截断或轮转时从头重读。
func (t *Tailer) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// 监听父目录以便捕获文件的创建与轮转
	dir := filepath.Dir(t.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	if info, err := os.Stat(t.path); err == nil {
		t.offset = info.Size()
	}

	t.logger.WithField("path", t.path).Info("Pipeline log tailer started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(t.path) {
				continue
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				// 轮转后的新文件从头读
				t.offset = 0
				t.drain()
			case event.Op&fsnotify.Write == fsnotify.Write:
				t.drain()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			t.logger.WithError(err).Warn("Log file watcher error")
		}
	}
}

// drain 读取自上次偏移以来的新行并逐行写入聚合服务。
func (t *Tailer) drain() {
	f, err := os.Open(t.path)
	if err != nil {
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return
	}
	// 文件被截断时从头重读
	if info.Size() < t.offset {
		t.offset = 0
	}
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return
	}

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// 不完整的最后一行留到下次写事件再读
			break
		}
		t.offset += int64(len(line))
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		t.emit(line)
	}
}

// emit 解析一行并写入聚合服务。
func (t *Tailer) emit(line string) {
	level, component, message, ts := ParseLine(line)
	data := map[string]any{"file": t.path}
	if !ts.IsZero() {
		data["logged_at"] = ts.Format(time.RFC3339)
	}
	t.sink.Log(level, component, "", message, data, domain.CategoryDefault)
}

// ParseLine 解析 "时间 | 级别 | 名称 | 消息" 格式的一行。
// 格式不符时整行作为消息返回，级别为 INFO。
func ParseLine(line string) (domain.Level, string, string, time.Time) {
	parts := strings.SplitN(line, " | ", 4)
	if len(parts) != 4 {
		return domain.LevelInfo, "pipeline", line, time.Time{}
	}

	ts, _ := time.ParseInLocation(pipeTimeLayout, strings.TrimSpace(parts[0]), time.Local)

	level := domain.ParseLevel(strings.TrimSpace(parts[1]))
	if level == domain.LevelAll {
		level = domain.LevelInfo
	}

	component := strings.TrimSpace(parts[2])
	if component == "" {
		component = "pipeline"
	}

	return level, component, parts[3], ts
}
