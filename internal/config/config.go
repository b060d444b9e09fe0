// Package config 提供运维驾驶舱后端的配置管理功能。
// 该包负责从 YAML 配置文件加载配置，并支持通过环境变量覆盖敏感配置项（如 Redis 密码）。
// 配置包含服务器、日志存储、远端轮询、持久化、文件采集、导出、事件和指标等方面的设置。
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是应用程序的主配置结构体，包含所有子系统的配置。
// 该结构体通过 YAML 标签与配置文件进行映射。
type Config struct {
	// Server HTTP 服务器配置
	Server ServerConfig `yaml:"server"`
	// Store 内存日志缓冲区配置
	Store StoreConfig `yaml:"store"`
	// Remote 远端日志源轮询配置
	Remote RemoteConfig `yaml:"remote"`
	// Persist 持久化槽位配置（Redis）
	Persist PersistConfig `yaml:"persist"`
	// Tailer 管线日志文件采集配置
	Tailer TailerConfig `yaml:"tailer"`
	// Exporter 定时导出任务配置
	Exporter ExporterConfig `yaml:"exporter"`
	// Events 事件扇出配置（NATS）
	Events EventsConfig `yaml:"events"`
	// Logging 诊断日志配置
	Logging LoggingConfig `yaml:"logging"`
	// Metrics 指标配置，用于 Prometheus 监控
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig HTTP 服务器配置结构体。
type ServerConfig struct {
	// Port HTTP 监听端口
	// 默认值：8080
	Port int `yaml:"port"`
}

// StoreConfig 内存日志缓冲区配置结构体。
type StoreConfig struct {
	// MaxLogs 缓冲区最大条目数，超出后从头部淘汰
	// 默认值：1000
	MaxLogs int `yaml:"max_logs"`
	// PersistLogs 持久化尾部窗口大小，应小于 MaxLogs
	// 默认值：200
	PersistLogs int `yaml:"persist_logs"`
}

// RemoteConfig 远端日志源轮询配置结构体。
type RemoteConfig struct {
	// Enabled 是否启用远端轮询
	// 默认值：true
	Enabled *bool `yaml:"enabled"`
	// URL 远端日志源基础地址（管线桥接服务）
	// 默认值：http://localhost:8700
	URL string `yaml:"url"`
	// Interval 轮询间隔
	// 默认值：3s
	Interval time.Duration `yaml:"interval"`
	// Timeout 单次拉取的超时上限
	// 默认值：5s
	Timeout time.Duration `yaml:"timeout"`
}

// PersistConfig 持久化槽位配置结构体。
type PersistConfig struct {
	// Enabled 是否启用持久化；关闭时服务以纯内存方式运行
	// 默认值：true
	Enabled *bool `yaml:"enabled"`
	// RedisAddr Redis 地址
	// 默认值：localhost:6379
	RedisAddr string `yaml:"redis_addr"`
	// RedisPassword Redis 密码，可通过 COCKPIT_REDIS_PASSWORD 覆盖
	RedisPassword string `yaml:"redis_password"`
	// RedisDB Redis 数据库编号
	RedisDB int `yaml:"redis_db"`
	// Key 持久化槽位键名
	// 默认值：cockpit:logs:recent
	Key string `yaml:"key"`
}

// TailerConfig 管线日志文件采集配置结构体。
// 采集器跟随管线进程写入的日志文件，把新行解析为本地条目。
type TailerConfig struct {
	// Enabled 是否启用文件采集
	// 默认值：false
	Enabled bool `yaml:"enabled"`
	// Path 日志文件路径
	// 默认值：logs/pipeline.log
	Path string `yaml:"path"`
}

// ExporterConfig 定时导出任务配置结构体。
type ExporterConfig struct {
	// Enabled 是否启用定时导出
	// 默认值：false
	Enabled bool `yaml:"enabled"`
	// Schedule cron 表达式（支持秒级）
	// 默认值：0 0 * * * *（每小时）
	Schedule string `yaml:"schedule"`
	// Dir 导出文件写入目录
	// 默认值：exports
	Dir string `yaml:"dir"`
}

// EventsConfig 事件扇出配置结构体。
type EventsConfig struct {
	// Enabled 是否启用 NATS 事件扇出
	// 默认值：false
	Enabled bool `yaml:"enabled"`
	// NATSURL NATS 服务器地址
	// 默认值：nats://localhost:4222
	NATSURL string `yaml:"nats_url"`
	// Subject 发布主题
	// 默认值：cockpit.logs
	Subject string `yaml:"subject"`
}

// LoggingConfig 诊断日志配置结构体。
type LoggingConfig struct {
	// Level 日志级别（debug/info/warn/error）
	// 默认值：info
	Level string `yaml:"level"`
	// Format 输出格式（json/text）
	// 默认值：json
	Format string `yaml:"format"`
}

// MetricsConfig 指标配置结构体。
type MetricsConfig struct {
	// Namespace Prometheus 指标名前缀
	// 默认值：cockpit
	Namespace string `yaml:"namespace"`
}

// Load 从 YAML 文件加载配置，应用默认值和环境变量覆盖。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Default 返回一份全默认配置（未提供配置文件时使用）。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg
}

// applyDefaults 为未设置的配置项填充默认值。
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Store.MaxLogs == 0 {
		c.Store.MaxLogs = 1000
	}
	if c.Store.PersistLogs == 0 {
		c.Store.PersistLogs = 200
	}
	if c.Remote.Enabled == nil {
		t := true
		c.Remote.Enabled = &t
	}
	if c.Remote.URL == "" {
		c.Remote.URL = "http://localhost:8700"
	}
	if c.Remote.Interval == 0 {
		c.Remote.Interval = 3 * time.Second
	}
	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = 5 * time.Second
	}
	if c.Persist.Enabled == nil {
		t := true
		c.Persist.Enabled = &t
	}
	if c.Persist.RedisAddr == "" {
		c.Persist.RedisAddr = "localhost:6379"
	}
	if c.Persist.Key == "" {
		c.Persist.Key = "cockpit:logs:recent"
	}
	if c.Tailer.Path == "" {
		c.Tailer.Path = "logs/pipeline.log"
	}
	if c.Exporter.Schedule == "" {
		c.Exporter.Schedule = "0 0 * * * *"
	}
	if c.Exporter.Dir == "" {
		c.Exporter.Dir = "exports"
	}
	if c.Events.NATSURL == "" {
		c.Events.NATSURL = "nats://localhost:4222"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "cockpit.logs"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "cockpit"
	}
}

// applyEnvOverrides 应用环境变量覆盖，优先级高于配置文件。
// 支持的变量：COCKPIT_REDIS_ADDR、COCKPIT_REDIS_PASSWORD、COCKPIT_REMOTE_URL、
// COCKPIT_PORT、COCKPIT_LOG_LEVEL。
func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("COCKPIT_REDIS_ADDR")); v != "" {
		c.Persist.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("COCKPIT_REDIS_PASSWORD")); v != "" {
		c.Persist.RedisPassword = v
	}
	if v := strings.TrimSpace(os.Getenv("COCKPIT_REMOTE_URL")); v != "" {
		c.Remote.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("COCKPIT_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("COCKPIT_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
}
