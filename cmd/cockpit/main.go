// Package main 是 cockpit 命令行工具的入口点。
// cockpit 是运维驾驶舱后端的 CLI 工具，
// 提供日志查询、实时跟随、导出、清空和工作流管理等操作。
package main

import (
	"os"

	"github.com/oriys/cockpit/cmd/cockpit/cmd"
)

// main 是 CLI 工具的主函数。
// 它调用 cmd 包的 Execute 函数来解析和执行用户命令。
func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
