// Package cmd 包含 cockpit CLI 工具的所有命令实现。
// 使用 cobra 框架构建命令行接口。
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// 全局命令行标志变量
var (
	cfgFile   string // 配置文件路径
	apiURL    string // API 服务器地址
	outputFmt string // 输出格式（table/json/yaml）
)

// rootCmd 是 CLI 的根命令。
// 所有子命令都挂载在这个根命令下。
var rootCmd = &cobra.Command{
	Use:   "cockpit",
	Short: "Cockpit - pipeline dashboard CLI",
	Long: `cockpit 是运维驾驶舱后端的命令行工具。

使用示例:
  # 查看最近日志
  cockpit logs

  # 按级别过滤
  cockpit logs --level ERROR

  # 实时跟随日志流
  cockpit logs --follow

  # 导出全部日志到文件
  cockpit export -o json > logs.json

  # 查看当前工作流上下文
  cockpit workflow`,
}

// Execute 执行根命令。
// 这是 CLI 的入口函数，由 main 包调用。
func Execute() error {
	return rootCmd.Execute()
}

// init 初始化命令行工具，注册全局标志和配置初始化函数。
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径（默认为 $HOME/.cockpit.yaml）")
	rootCmd.PersistentFlags().StringVarP(&apiURL, "api-url", "u", "http://localhost:8080", "API 服务器地址")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "输出格式（table、json、yaml）")

	// 将标志绑定到 viper 配置
	viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
}

// initConfig 初始化配置。
// 按优先级加载配置：命令行标志 > 环境变量 > 配置文件。
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cockpit")
	}

	// 环境变量格式：COCKPIT_<KEY>，如 COCKPIT_API_URL
	viper.SetEnvPrefix("COCKPIT")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}
