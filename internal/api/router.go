// Package api 提供运维驾驶舱后端的 HTTP API 处理程序。
// 该文件负责配置 HTTP 路由器和中间件，将 HTTP 请求映射到相应的处理器方法。
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// RouterConfig 路由器配置选项
type RouterConfig struct {
	// Console 控制台处理器
	Console *ConsoleHandler
	// Logger 日志记录器
	Logger *logrus.Logger
}

// NewRouter 创建并配置 HTTP 路由器。
//
// 路由结构：
//
//	/health                      - 基本健康检查
//	/metrics                     - Prometheus 指标端点
//	/api/console/logs            - 日志查询 / 写入 / 清空
//	/api/console/logs/stream     - 实时日志 WebSocket
//	/api/console/logs/export     - 日志导出
//	/api/console/workflow        - 工作流上下文管理
func NewRouter(cfg *RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// 中间件按照添加顺序执行，形成洋葱模型
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5, "application/json", "text/plain"))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	// 健康检查端点 - 用于负载均衡器探针
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Prometheus 指标端点 - 暴露应用程序指标供监控系统采集
	r.Handle("/metrics", promhttp.Handler())

	// Web 控制台 API
	cfg.Console.RegisterRoutes(r)

	return r
}

// corsMiddleware 处理跨域请求。
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// 浏览器在发送跨域请求前会先发送 OPTIONS 预检请求
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON 将数据序列化为 JSON 写入响应。
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError 以 {"error": message} 的形式写入错误响应。
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
