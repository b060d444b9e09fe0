// Package domain 定义了运维驾驶舱（Cockpit）后端的核心领域模型。
package domain

import (
	"testing"
)

// TestParseLevel 测试级别字符串的解析。
// 覆盖大小写变体、空字符串和未知值的透传行为。
func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Level
	}{
		{name: "empty means all", in: "", want: LevelAll},
		{name: "all lowercase", in: "all", want: LevelAll},
		{name: "debug", in: "debug", want: LevelDebug},
		{name: "info uppercase", in: "INFO", want: LevelInfo},
		{name: "warn", in: "warn", want: LevelWarn},
		{name: "warning alias", in: "WARNING", want: LevelWarn},
		{name: "error", in: "ERROR", want: LevelError},
		{name: "err alias", in: "err", want: LevelError},
		{name: "audit", in: "audit", want: LevelAudit},
		{name: "gate", in: "GATE", want: LevelGate},
		{name: "unknown passes through", in: "TRACE", want: Level("TRACE")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestParseCategory 测试分类字符串的解析。
func TestParseCategory(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Category
	}{
		{name: "empty means all", in: "", want: CategoryAll},
		{name: "default", in: "default", want: CategoryDefault},
		{name: "gate uppercase", in: "GATE", want: CategoryGate},
		{name: "click", in: "click", want: CategoryClick},
		{name: "network", in: "NETWORK", want: CategoryNetwork},
		{name: "mode", in: "mode", want: CategoryMode},
		{name: "template", in: "Template", want: CategoryTemplate},
		{name: "fallback", in: "FALLBACK", want: CategoryFallback},
		{name: "unknown passes through", in: "MISC", want: Category("MISC")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCategory(tt.in); got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestNewFilter 测试默认过滤器不限制任何条目。
func TestNewFilter(t *testing.T) {
	f := NewFilter()
	if f.Level != LevelAll {
		t.Errorf("Level = %q, want %q", f.Level, LevelAll)
	}
	if f.Category != CategoryAll {
		t.Errorf("Category = %q, want %q", f.Category, CategoryAll)
	}
	if f.Component != "" || f.Search != "" {
		t.Errorf("Component/Search should be empty, got %q / %q", f.Component, f.Search)
	}
}
