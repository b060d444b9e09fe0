// Package cmd 提供 cockpit 命令行工具的所有子命令实现。
// 本文件实现 clear 命令，用于清空后端日志缓冲区。
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// clearCmd 是 clear 命令的 cobra.Command 实例。
// 清空内存缓冲区和持久化窗口；远端水位线不重置，
// 因此随后的轮询不会重新拉取历史。
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the log buffer and persisted window",
	RunE:  runClear,
}

// clearYes 跳过确认提示。
var clearYes bool

// init 注册 clear 命令。
func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip confirmation prompt")
}

// runClear 是 clear 命令的执行函数。
func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		fmt.Print("Clear all aggregated logs? This cannot be undone. [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := NewClient().ClearLogs(); err != nil {
		return err
	}
	fmt.Println("Logs cleared.")
	return nil
}
