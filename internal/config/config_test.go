package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefault 测试全默认配置。
func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Store.MaxLogs != 1000 {
		t.Errorf("Store.MaxLogs = %d, want 1000", cfg.Store.MaxLogs)
	}
	if cfg.Store.PersistLogs != 200 {
		t.Errorf("Store.PersistLogs = %d, want 200", cfg.Store.PersistLogs)
	}
	if cfg.Remote.Enabled == nil || !*cfg.Remote.Enabled {
		t.Error("Remote.Enabled should default to true")
	}
	if cfg.Remote.URL != "http://localhost:8700" {
		t.Errorf("Remote.URL = %q", cfg.Remote.URL)
	}
	if cfg.Remote.Interval != 3*time.Second {
		t.Errorf("Remote.Interval = %v, want 3s", cfg.Remote.Interval)
	}
	if cfg.Remote.Timeout != 5*time.Second {
		t.Errorf("Remote.Timeout = %v, want 5s", cfg.Remote.Timeout)
	}
	if cfg.Persist.Enabled == nil || !*cfg.Persist.Enabled {
		t.Error("Persist.Enabled should default to true")
	}
	if cfg.Persist.Key != "cockpit:logs:recent" {
		t.Errorf("Persist.Key = %q", cfg.Persist.Key)
	}
	if cfg.Tailer.Enabled {
		t.Error("Tailer.Enabled should default to false")
	}
	if cfg.Events.NATSURL != "nats://localhost:4222" {
		t.Errorf("Events.NATSURL = %q", cfg.Events.NATSURL)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
	if cfg.Metrics.Namespace != "cockpit" {
		t.Errorf("Metrics.Namespace = %q, want cockpit", cfg.Metrics.Namespace)
	}
}

// TestLoad 测试从 YAML 文件加载配置并合并默认值。
func TestLoad(t *testing.T) {
	content := `
server:
  port: 9090
store:
  max_logs: 500
remote:
  enabled: false
  url: http://bridge:8700
persist:
  redis_addr: redis:6379
  redis_db: 2
tailer:
  enabled: true
  path: /var/log/pipeline.log
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Store.MaxLogs != 500 {
		t.Errorf("Store.MaxLogs = %d, want 500", cfg.Store.MaxLogs)
	}
	// 未设置的项仍得到默认值
	if cfg.Store.PersistLogs != 200 {
		t.Errorf("Store.PersistLogs = %d, want default 200", cfg.Store.PersistLogs)
	}
	// 显式 false 不被默认值覆盖
	if cfg.Remote.Enabled == nil || *cfg.Remote.Enabled {
		t.Error("Remote.Enabled explicit false must survive defaulting")
	}
	if cfg.Remote.URL != "http://bridge:8700" {
		t.Errorf("Remote.URL = %q", cfg.Remote.URL)
	}
	if cfg.Remote.Interval != 3*time.Second {
		t.Errorf("Remote.Interval = %v, want default 3s", cfg.Remote.Interval)
	}
	if cfg.Persist.RedisAddr != "redis:6379" || cfg.Persist.RedisDB != 2 {
		t.Errorf("Persist = %+v", cfg.Persist)
	}
	if !cfg.Tailer.Enabled || cfg.Tailer.Path != "/var/log/pipeline.log" {
		t.Errorf("Tailer = %+v", cfg.Tailer)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

// TestLoadMissingFile 测试缺失文件返回错误。
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestEnvOverrides 测试环境变量覆盖的优先级高于配置文件和默认值。
func TestEnvOverrides(t *testing.T) {
	t.Setenv("COCKPIT_REDIS_ADDR", "override:6379")
	t.Setenv("COCKPIT_REDIS_PASSWORD", "secret")
	t.Setenv("COCKPIT_REMOTE_URL", "http://override:8700")
	t.Setenv("COCKPIT_PORT", "7070")
	t.Setenv("COCKPIT_LOG_LEVEL", "warn")

	cfg := Default()

	if cfg.Persist.RedisAddr != "override:6379" {
		t.Errorf("Persist.RedisAddr = %q", cfg.Persist.RedisAddr)
	}
	if cfg.Persist.RedisPassword != "secret" {
		t.Errorf("Persist.RedisPassword = %q", cfg.Persist.RedisPassword)
	}
	if cfg.Remote.URL != "http://override:8700" {
		t.Errorf("Remote.URL = %q", cfg.Remote.URL)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

// TestEnvOverrideInvalidPort 测试非法端口值被忽略。
func TestEnvOverrideInvalidPort(t *testing.T) {
	t.Setenv("COCKPIT_PORT", "not-a-port")

	cfg := Default()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}
