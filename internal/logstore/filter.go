package logstore

import (
	"encoding/json"
	"strings"

	"github.com/oriys/cockpit/internal/domain"
)

// Matches 判断条目是否满足过滤条件。纯函数，不修改条目。
//
// 匹配规则：
//   - Level / Category 精确匹配，"ALL" 哨兵值表示不限制
//   - Component 大小写不敏感的子串匹配
//   - Search 对 Message 或 Data 的 JSON 序列化结果做大小写不敏感的子串匹配
func Matches(e *domain.LogEntry, f domain.Filter) bool {
	if f.Level != "" && f.Level != domain.LevelAll && e.Level != f.Level {
		return false
	}
	if f.Category != "" && f.Category != domain.CategoryAll && e.Category != f.Category {
		return false
	}
	if f.Component != "" && !strings.Contains(strings.ToLower(e.Component), strings.ToLower(f.Component)) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if strings.Contains(strings.ToLower(e.Message), needle) {
			return true
		}
		if len(e.Data) > 0 {
			if raw, err := json.Marshal(e.Data); err == nil &&
				strings.Contains(strings.ToLower(string(raw)), needle) {
				return true
			}
		}
		return false
	}
	return true
}
