// Package main 是运维驾驶舱后端服务的入口点。
// 该服务聚合本地诊断事件与远端管线日志，维护按时间排序、容量受限的
// 日志缓冲区，并通过 HTTP/WebSocket 向控制台前端提供查询与实时推送。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oriys/cockpit/internal/aggregator"
	"github.com/oriys/cockpit/internal/api"
	"github.com/oriys/cockpit/internal/config"
	"github.com/oriys/cockpit/internal/domain"
	"github.com/oriys/cockpit/internal/events"
	"github.com/oriys/cockpit/internal/exporter"
	"github.com/oriys/cockpit/internal/metrics"
	"github.com/oriys/cockpit/internal/persist"
	"github.com/oriys/cockpit/internal/poller"
	"github.com/oriys/cockpit/internal/tailer"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "/etc/cockpit/config.yaml", "Path to config file")
	flag.Parse()

	// 设置日志记录器
	// 使用 JSON 格式输出日志，便于日志收集和分析
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// 加载配置文件；文件缺失时使用默认配置运行（开发模式）
	cfg, err := config.Load(*configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.WithField("path", *configPath).Warn("Config file not found, using defaults")
			cfg = config.Default()
		} else {
			logger.WithError(err).Fatal("Failed to load config")
		}
	}

	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.Logging.Level == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.WithField("port", cfg.Server.Port).Info("Starting Cockpit backend")

	// 初始化 Prometheus 指标
	m := metrics.New(cfg.Metrics.Namespace)

	// 初始化持久化槽位（Redis）
	// 连接失败不致命：服务以纯内存方式继续运行，本轮生命周期不具备持久性
	var persistence persist.Store
	if cfg.Persist.Enabled != nil && *cfg.Persist.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := persist.Connect(ctx, cfg.Persist.RedisAddr, cfg.Persist.RedisPassword, cfg.Persist.RedisDB)
		cancel()
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, running without persistence")
		} else {
			persistence = persist.NewRedisStore(client, cfg.Persist.Key)
		}
	}

	// 创建日志聚合服务
	svc := aggregator.New(aggregator.Options{
		MaxLogs:     cfg.Store.MaxLogs,
		PersistLogs: cfg.Store.PersistLogs,
		Persistence: persistence,
		Metrics:     m,
		Logger:      logger,
	})

	// 从持久化槽位恢复缓冲区，并用最新条目的时间戳播种远端水位线，
	// 避免重启后重新拉取已保留的历史
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 5*time.Second)
	restored, newest := svc.SeedFromPersistence(seedCtx)
	seedCancel()
	if restored > 0 {
		logger.WithFields(logrus.Fields{
			"count":     restored,
			"watermark": newest.Format(time.RFC3339Nano),
		}).Info("Restored persisted logs")
	}

	// 启动远端日志轮询
	var remote *poller.Poller
	if cfg.Remote.Enabled != nil && *cfg.Remote.Enabled {
		client := poller.NewClient(cfg.Remote.URL, cfg.Remote.Timeout)
		remote = poller.New(client, svc, logger, m)
		remote.SetWatermark(newest)
		remote.Start(cfg.Remote.Interval)
	}

	// 启动管线日志文件采集
	tailCtx, tailCancel := context.WithCancel(context.Background())
	defer tailCancel()
	if cfg.Tailer.Enabled {
		t := tailer.New(cfg.Tailer.Path, svc, logger)
		go func() {
			if err := t.Run(tailCtx); err != nil {
				logger.WithError(err).Warn("Pipeline log tailer exited")
			}
		}()
	}

	// 启动定时导出任务
	var exp *exporter.Exporter
	if cfg.Exporter.Enabled {
		exp = exporter.New(svc, cfg.Exporter.Dir, logger)
		if err := exp.Start(cfg.Exporter.Schedule); err != nil {
			logger.WithError(err).Warn("Failed to start log export scheduler")
			exp = nil
		}
	}

	// 启动 NATS 事件扇出
	if cfg.Events.Enabled {
		pub, err := events.NewPublisher(cfg.Events.NATSURL, cfg.Events.Subject, logger)
		if err != nil {
			logger.WithError(err).Warn("NATS unavailable, log fan-out disabled")
		} else {
			defer pub.Close()
			svc.Subscribe(pub.Observer())
		}
	}

	// 记录服务自身的启动事件
	svc.Log(domain.LevelInfo, "cockpitd", "main", "Cockpit backend started",
		map[string]any{"port": cfg.Server.Port, "restored": restored}, domain.CategoryDefault)

	// 配置 HTTP 服务器
	router := api.NewRouter(&api.RouterConfig{
		Console: api.NewConsoleHandler(svc, logger),
		Logger:  logger,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// 等待退出信号，按依赖顺序优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	if remote != nil {
		remote.Stop()
	}
	tailCancel()
	if exp != nil {
		exp.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown failed")
	}

	if persistence != nil {
		_ = persistence.Close()
	}
	logger.Info("Cockpit backend stopped")
}
