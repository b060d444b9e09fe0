// Package cmd 提供 cockpit 命令行工具的所有子命令实现。
// 本文件实现 API 客户端，用于与驾驶舱后端服务进行通信。
//
// Client 封装了与 API 服务器的交互逻辑，包括：
//   - 日志查询、写入、清空与导出
//   - 工作流上下文管理
//
// 客户端使用 HTTP/JSON 协议与服务器通信，支持错误处理和超时控制。
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Client 是驾驶舱后端的 API 客户端。
type Client struct {
	baseURL    string       // API 服务器的基础 URL
	httpClient *http.Client // HTTP 客户端，用于发送请求
}

// NewClient 创建一个新的 API 客户端实例。
// 从 viper 配置中读取 api_url，如果未配置则使用默认值 http://localhost:8080。
func NewClient() *Client {
	baseURL := viper.GetString("api_url")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// LogEntry 表示一条日志条目（与后端 API 的 JSON 字段对应）。
type LogEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Component string         `json:"component"`
	Function  string         `json:"function"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Source    string         `json:"source"`
}

// Workflow 表示当前工作流上下文。
type Workflow struct {
	Name        string     `json:"name"`
	Step        int        `json:"step"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CurrentStep string     `json:"current_step,omitempty"`
}

// listLogsResponse 是日志查询接口的响应体。
type listLogsResponse struct {
	Data  []LogEntry `json:"data"`
	Total int        `json:"total"`
}

// do 发送 HTTP 请求并解析 JSON 响应，将 4xx/5xx 转换为可读错误。
func (c *Client) do(method, path string, query url.Values, body any, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, u, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// ListLogs 查询满足过滤条件的日志。
func (c *Client) ListLogs(level, category, component, search string) ([]LogEntry, error) {
	q := url.Values{}
	if level != "" {
		q.Set("level", level)
	}
	if category != "" {
		q.Set("category", category)
	}
	if component != "" {
		q.Set("component", component)
	}
	if search != "" {
		q.Set("search", search)
	}

	var resp listLogsResponse
	if err := c.do(http.MethodGet, "/api/console/logs", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ExportLogs 下载全部日志的美化 JSON。
func (c *Client) ExportLogs() ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/api/console/logs/export", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// ClearLogs 清空后端日志缓冲区和持久化窗口。
func (c *Client) ClearLogs() error {
	return c.do(http.MethodDelete, "/api/console/logs", nil, nil, nil)
}

// GetWorkflow 获取当前工作流上下文。
func (c *Client) GetWorkflow() (*Workflow, error) {
	var wf Workflow
	if err := c.do(http.MethodGet, "/api/console/workflow", nil, nil, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// SetWorkflow 启动新的工作流上下文。
func (c *Client) SetWorkflow(name string, step int) (*Workflow, error) {
	var wf Workflow
	body := map[string]any{"name": name, "step": step}
	if err := c.do(http.MethodPost, "/api/console/workflow", nil, body, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// AdvanceWorkflow 推进当前工作流到下一步。
func (c *Client) AdvanceWorkflow(stepName string) (*Workflow, error) {
	var wf Workflow
	body := map[string]any{"step_name": stepName}
	if err := c.do(http.MethodPost, "/api/console/workflow/advance", nil, body, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// EndWorkflow 结束当前工作流。
func (c *Client) EndWorkflow(success bool) (*Workflow, error) {
	var wf Workflow
	body := map[string]any{"success": success}
	if err := c.do(http.MethodPost, "/api/console/workflow/end", nil, body, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}
