// Package cmd 提供 cockpit 命令行工具的所有子命令实现。
// 本文件实现 logs 命令，用于查询和实时跟随聚合日志。
//
// 该命令显示后端当前缓冲区内满足过滤条件的日志条目；
// 加 --follow 时通过 WebSocket 跟随实时日志流。
// 支持以 JSON 或 YAML 格式输出。
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// logsCmd 是 logs 命令的 cobra.Command 实例。
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View aggregated logs",
	Long: `View aggregated pipeline logs.

Examples:
  # View current logs
  cockpit logs

  # Filter by level and component
  cockpit logs --level ERROR --component crawler

  # Full-text search in message and data
  cockpit logs --search timeout

  # Follow realtime logs (WebSocket stream)
  cockpit logs --follow

  # Output as JSON
  cockpit logs -o json`,
	RunE: runLogs,
}

// logs 命令的过滤标志。
var (
	logsLevel     string
	logsCategory  string
	logsComponent string
	logsSearch    string
	logsFollow    bool
)

// init 注册 logs 命令并设置命令行标志。
func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().StringVarP(&logsLevel, "level", "l", "", "Filter by level (DEBUG/INFO/WARN/ERROR/AUDIT/GATE)")
	logsCmd.Flags().StringVarP(&logsCategory, "category", "c", "", "Filter by category")
	logsCmd.Flags().StringVar(&logsComponent, "component", "", "Filter by component substring")
	logsCmd.Flags().StringVarP(&logsSearch, "search", "s", "", "Full-text search in message and data")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow realtime logs (WebSocket stream)")
}

// runLogs 是 logs 命令的执行函数。
func runLogs(cmd *cobra.Command, args []string) error {
	client := NewClient()

	if logsFollow {
		return followLogs(client.baseURL)
	}

	entries, err := client.ListLogs(logsLevel, logsCategory, logsComponent, logsSearch)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No log entries.")
		return nil
	}

	return printLogEntries(entries)
}

// followLogs 通过 WebSocket 跟随实时日志流，Ctrl+C 退出。
func followLogs(baseURL string) error {
	wsURL, err := buildWebSocketURL(baseURL, "/api/console/logs/stream")
	if err != nil {
		return err
	}

	q := url.Values{}
	if logsLevel != "" {
		q.Set("level", logsLevel)
	}
	if logsCategory != "" {
		q.Set("category", logsCategory)
	}
	if logsComponent != "" {
		q.Set("component", logsComponent)
	}
	if logsSearch != "" {
		q.Set("search", logsSearch)
	}
	if len(q) > 0 {
		wsURL += "?" + q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect log stream: %w", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	fmt.Println("Following logs (Ctrl+C to stop)...")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// If user interrupted, treat as graceful exit.
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("log stream closed: %w", err)
		}

		var entry LogEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		printStreamEntry(data, &entry)
	}
}

// printStreamEntry 按配置的输出格式打印一条实时条目。
func printStreamEntry(raw []byte, entry *LogEntry) {
	switch viper.GetString("output") {
	case "json":
		fmt.Fprintln(os.Stdout, string(raw))
	case "yaml":
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return
		}
		out, err := yaml.Marshal(v)
		if err != nil {
			return
		}
		fmt.Fprint(os.Stdout, string(out))
	default:
		line := fmt.Sprintf("%s\t%s\t%s\t%s",
			entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Level, entry.Component, entry.Message)
		if entry.Source == "remote" {
			line += "\t(remote)"
		}
		fmt.Fprintln(os.Stdout, line)
	}
}

// printLogEntries 按配置的输出格式打印条目列表。
func printLogEntries(entries []LogEntry) error {
	switch viper.GetString("output") {
	case "json":
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	case "yaml":
		out, err := yaml.Marshal(entries)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	default:
		fmt.Printf("%-20s %-6s %-10s %-16s %s\n", "TIMESTAMP", "LEVEL", "CATEGORY", "COMPONENT", "MESSAGE")
		for _, e := range entries {
			fmt.Printf("%-20s %-6s %-10s %-16s %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.Level, e.Category, e.Component, e.Message)
		}
		return nil
	}
}

// buildWebSocketURL 将 HTTP API 地址转换为 WebSocket 地址。
func buildWebSocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// ok
	default:
		return "", fmt.Errorf("unsupported api url scheme: %s", u.Scheme)
	}

	u.Path = path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
