// Package api 提供 HTTP API 处理器。
// 本文件实现 Web 控制台（日志面板）专用的 API 端点。
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/oriys/cockpit/internal/aggregator"
	"github.com/oriys/cockpit/internal/domain"
	"github.com/oriys/cockpit/internal/logstore"
	"github.com/sirupsen/logrus"
)

// ConsoleHandler 处理 Web 控制台相关的 API 请求。
type ConsoleHandler struct {
	svc    *aggregator.Service
	logger *logrus.Logger

	// WebSocket 升级器
	upgrader websocket.Upgrader
}

// NewConsoleHandler 创建控制台处理器。
func NewConsoleHandler(svc *aggregator.Service, logger *logrus.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 开发环境允许所有来源
			},
		},
	}
}

// RegisterRoutes 注册控制台路由。
func (c *ConsoleHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/console", func(r chi.Router) {
		// 日志查询与写入
		r.Get("/logs", c.ListLogs)
		r.Post("/logs", c.CreateLog)
		r.Delete("/logs", c.ClearLogs)
		r.Get("/logs/export", c.ExportLogs)

		// 实时日志 WebSocket
		r.Get("/logs/stream", c.LogStream)

		// 工作流上下文
		r.Get("/workflow", c.GetWorkflow)
		r.Post("/workflow", c.SetWorkflow)
		r.Post("/workflow/advance", c.AdvanceWorkflow)
		r.Post("/workflow/end", c.EndWorkflow)
	})
}

// parseFilter 从查询参数解析过滤条件。
func parseFilter(r *http.Request) domain.Filter {
	q := r.URL.Query()
	return domain.Filter{
		Level:     domain.ParseLevel(q.Get("level")),
		Category:  domain.ParseCategory(q.Get("category")),
		Component: q.Get("component"),
		Search:    q.Get("search"),
	}
}

// ListLogs 返回满足过滤条件的日志快照（按时间戳升序）。
//
// Query 参数：
//   - level / category: 精确匹配，缺省或 "ALL" 表示不限制
//   - component: 大小写不敏感的子串匹配
//   - search: 对 message 或序列化 data 的大小写不敏感子串匹配
func (c *ConsoleHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	entries := c.svc.GetLogs(parseFilter(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  entries,
		"total": len(entries),
	})
}

// createLogRequest 是本地日志写入请求体。
type createLogRequest struct {
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Component string         `json:"component"`
	Function  string         `json:"function"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

// CreateLog 写入一条本地日志条目（界面点击、质量门判定等事件）。
func (c *ConsoleHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var req createLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	level := domain.ParseLevel(req.Level)
	if level == domain.LevelAll {
		level = domain.LevelInfo
	}
	category := domain.ParseCategory(req.Category)
	if category == domain.CategoryAll {
		category = domain.CategoryDefault
	}

	entry := c.svc.Log(level, req.Component, req.Function, req.Message, req.Data, category)
	writeJSON(w, http.StatusCreated, entry)
}

// ClearLogs 清空缓冲区和持久化槽位。远端水位线保持不变。
func (c *ConsoleHandler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	if err := c.svc.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ExportLogs 以美化缩进的 JSON 下载当前全部日志。
func (c *ConsoleHandler) ExportLogs(w http.ResponseWriter, _ *http.Request) {
	data, err := c.svc.ExportJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export logs")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		"attachment; filename=cockpit-logs-"+time.Now().Format("20060102-150405")+".json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// LogStream 实时日志流 WebSocket。
// 每次变更后新追加的条目逐条推送给客户端；支持与 ListLogs 相同的过滤参数。
func (c *ConsoleHandler) LogStream(w http.ResponseWriter, r *http.Request) {
	filter := parseFilter(r)

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WithError(err).Error("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// 广播是同步回调，通过带缓冲的通道桥接到连接写循环；
	// 通道满时丢弃，慢客户端不能阻塞变更路径
	logChan := make(chan domain.LogEntry, 100)
	unsubscribe := c.svc.Subscribe(func(entries []domain.LogEntry) {
		for _, e := range entries {
			select {
			case logChan <- e:
			default:
			}
		}
	})
	defer unsubscribe()

	// 监听客户端关闭
	done := make(chan struct{})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(done)
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case entry := <-logChan:
			if !logstore.Matches(&entry, filter) {
				continue
			}
			if err := conn.WriteJSON(entry); err != nil {
				return
			}
		}
	}
}

// GetWorkflow 返回当前工作流上下文。
func (c *ConsoleHandler) GetWorkflow(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, c.svc.Workflow())
}

// setWorkflowRequest 是工作流启动请求体。
type setWorkflowRequest struct {
	Name string `json:"name"`
	Step int    `json:"step"`
}

// SetWorkflow 启动一个新的工作流上下文。
func (c *ConsoleHandler) SetWorkflow(w http.ResponseWriter, r *http.Request) {
	var req setWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	c.svc.SetWorkflow(req.Name, req.Step)
	writeJSON(w, http.StatusOK, c.svc.Workflow())
}

// advanceWorkflowRequest 是工作流步进请求体。
type advanceWorkflowRequest struct {
	StepName string `json:"step_name"`
}

// AdvanceWorkflow 推进当前工作流到下一步。
func (c *ConsoleHandler) AdvanceWorkflow(w http.ResponseWriter, r *http.Request) {
	var req advanceWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c.svc.AdvanceWorkflow(req.StepName)
	writeJSON(w, http.StatusOK, c.svc.Workflow())
}

// endWorkflowRequest 是工作流结束请求体。
type endWorkflowRequest struct {
	Success bool `json:"success"`
}

// EndWorkflow 结束当前工作流，上下文重置为 idle。
func (c *ConsoleHandler) EndWorkflow(w http.ResponseWriter, r *http.Request) {
	var req endWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c.svc.EndWorkflow(req.Success)
	writeJSON(w, http.StatusOK, c.svc.Workflow())
}
