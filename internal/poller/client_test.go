package poller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestFetchSince 测试客户端对 since 参数、响应体形态和错误状态码的处理。
func TestFetchSince(t *testing.T) {
	tests := []struct {
		name      string
		since     time.Time
		status    int
		body      string
		wantSince string
		wantCount int
		wantErr   bool
	}{
		{
			// 零水位线不带 since 参数
			name:      "zero since omits query param",
			status:    http.StatusOK,
			body:      `{"logs": [{"timestamp": "2026-08-31T10:00:00Z", "level": "INFO", "message": "hi"}]}`,
			wantSince: "",
			wantCount: 1,
		},
		{
			// 非零水位线编码为 RFC3339Nano
			name:      "since encoded as rfc3339",
			since:     time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
			status:    http.StatusOK,
			body:      `{"logs": []}`,
			wantSince: "2026-08-31T10:00:00Z",
			wantCount: 0,
		},
		{
			// logs 数组缺失视为没有新条目
			name:      "missing logs array",
			status:    http.StatusOK,
			body:      `{}`,
			wantCount: 0,
		},
		{
			// 非 2xx 转换为错误
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `internal error`,
			wantErr: true,
		},
		{
			// 响应体不是合法 JSON
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotSince string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotSince = r.URL.Query().Get("since")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, time.Second)
			records, err := client.FetchSince(context.Background(), tt.since)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchSince() error = %v", err)
			}
			if gotPath != "/api/logs" {
				t.Errorf("request path = %q, want /api/logs", gotPath)
			}
			if gotSince != tt.wantSince {
				t.Errorf("since param = %q, want %q", gotSince, tt.wantSince)
			}
			if len(records) != tt.wantCount {
				t.Errorf("len(records) = %d, want %d", len(records), tt.wantCount)
			}
		})
	}
}

// TestFetchSinceCancelledContext 测试取消的上下文让请求立刻失败。
func TestFetchSinceCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"logs": []}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, time.Second)
	if _, err := client.FetchSince(ctx, time.Time{}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

// TestNewClientDefaults 测试客户端的默认 baseURL 与尾部斜杠裁剪。
func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", 0)
	if c.baseURL != "http://localhost:8700" {
		t.Errorf("baseURL = %q, want default bridge address", c.baseURL)
	}

	c = NewClient("http://example.com/", time.Second)
	if c.baseURL != "http://example.com" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
}
