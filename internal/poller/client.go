// Package poller 实现远端日志源的增量轮询。
// 本文件提供访问远端日志源 HTTP API 的客户端封装。
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oriys/cockpit/internal/domain"
)

// DefaultFetchTimeout 是单次拉取的默认超时上限，
// 避免卡住的请求无限期阻塞下一次调度。
const DefaultFetchTimeout = 5 * time.Second

// Client 是远端日志源的 HTTP API 客户端。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建一个新的客户端。
// baseURL 为空时默认使用 http://localhost:8700（管线桥接服务）。
// timeout <= 0 时使用 DefaultFetchTimeout。
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8700"
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchSince 拉取 since 之后的新条目。
// since 为零值时省略过滤参数（首次拉取取全量窗口）。
// logs 数组缺失视为没有新条目；非 2xx 响应转换为错误由调用方静默跳过本周期。
func (c *Client) FetchSince(ctx context.Context, since time.Time) ([]domain.RemoteRecord, error) {
	u := c.baseURL + "/api/logs"
	if !since.IsZero() {
		q := url.Values{}
		q.Set("since", since.Format(time.RFC3339Nano))
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch remote logs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed domain.RemoteLogsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return parsed.Logs, nil
}
