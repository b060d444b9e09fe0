// Package cmd 提供 cockpit 命令行工具的所有子命令实现。
// 本文件实现 export 命令，用于把当前全部日志导出为美化 JSON。
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exportCmd 是 export 命令的 cobra.Command 实例。
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all logs as pretty-printed JSON",
	Long: `Export the full current log buffer as pretty-printed JSON.

Examples:
  # Print to stdout
  cockpit export

  # Write to a file
  cockpit export --file logs.json`,
	RunE: runExport,
}

// exportFile 是导出目标文件路径，为空时写到标准输出。
var exportFile string

// init 注册 export 命令。
func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFile, "file", "", "Write export to file instead of stdout")
}

// runExport 是 export 命令的执行函数。
func runExport(cmd *cobra.Command, args []string) error {
	data, err := NewClient().ExportLogs()
	if err != nil {
		return err
	}

	if exportFile == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(exportFile, data, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	fmt.Printf("Exported logs to %s\n", exportFile)
	return nil
}
