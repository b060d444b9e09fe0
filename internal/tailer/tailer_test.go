package tailer

import (
	"testing"
	"time"

	"github.com/oriys/cockpit/internal/domain"
)

// TestParseLine 测试管线日志行的解析。
func TestParseLine(t *testing.T) {
	tests := []struct {
		name          string
		line          string
		wantLevel     domain.Level
		wantComponent string
		wantMessage   string
		wantZeroTime  bool
	}{
		{
			name:          "standard pipeline line",
			line:          "2026-08-31 10:15:30,123 | INFO | crawler | page fetched",
			wantLevel:     domain.LevelInfo,
			wantComponent: "crawler",
			wantMessage:   "page fetched",
		},
		{
			name:          "error level",
			line:          "2026-08-31 10:15:31,000 | ERROR | chunker | split failed",
			wantLevel:     domain.LevelError,
			wantComponent: "chunker",
			wantMessage:   "split failed",
		},
		{
			name:          "lowercase level",
			line:          "2026-08-31 10:15:32,500 | warning | verifier | low score",
			wantLevel:     domain.LevelWarn,
			wantComponent: "verifier",
			wantMessage:   "low score",
		},
		{
			// 消息内含分隔符时只切前三段
			name:          "message contains separator",
			line:          "2026-08-31 10:15:33,000 | INFO | gate | score=0.9 | verdict=pass",
			wantLevel:     domain.LevelInfo,
			wantComponent: "gate",
			wantMessage:   "score=0.9 | verdict=pass",
		},
		{
			// 格式不符的行整行兜底为 INFO 消息
			name:          "unstructured line falls back",
			line:          "Traceback (most recent call last):",
			wantLevel:     domain.LevelInfo,
			wantComponent: "pipeline",
			wantMessage:   "Traceback (most recent call last):",
			wantZeroTime:  true,
		},
		{
			// 未知级别原样透传
			name:          "unknown level passes through",
			line:          "2026-08-31 10:15:34,000 | NOTICE | crawler | something",
			wantLevel:     domain.Level("NOTICE"),
			wantComponent: "crawler",
			wantMessage:   "something",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, component, message, ts := ParseLine(tt.line)
			if level != tt.wantLevel {
				t.Errorf("level = %q, want %q", level, tt.wantLevel)
			}
			if component != tt.wantComponent {
				t.Errorf("component = %q, want %q", component, tt.wantComponent)
			}
			if message != tt.wantMessage {
				t.Errorf("message = %q, want %q", message, tt.wantMessage)
			}
			if tt.wantZeroTime != ts.IsZero() {
				t.Errorf("timestamp zero = %v, want %v", ts.IsZero(), tt.wantZeroTime)
			}
		})
	}
}

// TestParseLineTimestamp 测试 asctime 毫秒格式的时间解析。
func TestParseLineTimestamp(t *testing.T) {
	_, _, _, ts := ParseLine("2026-08-31 10:15:30,123 | INFO | crawler | ok")
	want := time.Date(2026, 8, 31, 10, 15, 30, 123_000_000, time.Local)
	if !ts.Equal(want) {
		t.Errorf("timestamp = %v, want %v", ts, want)
	}
}
