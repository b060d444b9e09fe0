// Package cmd 提供 cockpit 命令行工具的所有子命令实现。
// 本文件实现 workflow 命令，用于查看和管理工作流上下文。
package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// workflowCmd 是 workflow 命令的 cobra.Command 实例。
// 不带子命令时显示当前工作流上下文。
var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Show or manage the current workflow context",
	Long: `Show or manage the workflow context stamped onto log entries.

Examples:
  # Show current workflow context
  cockpit workflow

  # Start a workflow
  cockpit workflow set content-generation

  # Advance to the next step
  cockpit workflow advance "crawl sources"

  # End the workflow
  cockpit workflow end --success`,
	RunE: runWorkflowShow,
}

// workflowSetCmd 启动新的工作流上下文。
var workflowSetCmd = &cobra.Command{
	Use:   "set <name> [step]",
	Short: "Start a workflow context",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runWorkflowSet,
}

// workflowAdvanceCmd 推进当前工作流到下一步。
var workflowAdvanceCmd = &cobra.Command{
	Use:   "advance <step-name>",
	Short: "Advance the workflow to the next step",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowAdvance,
}

// workflowEndCmd 结束当前工作流。
var workflowEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the current workflow",
	Args:  cobra.NoArgs,
	RunE:  runWorkflowEnd,
}

// workflowSuccess 标记工作流是否成功结束。
var workflowSuccess bool

// init 注册 workflow 命令及其子命令。
func init() {
	rootCmd.AddCommand(workflowCmd)
	workflowCmd.AddCommand(workflowSetCmd)
	workflowCmd.AddCommand(workflowAdvanceCmd)
	workflowCmd.AddCommand(workflowEndCmd)
	workflowEndCmd.Flags().BoolVar(&workflowSuccess, "success", true, "Whether the workflow ended successfully")
}

// runWorkflowShow 显示当前工作流上下文。
func runWorkflowShow(cmd *cobra.Command, args []string) error {
	wf, err := NewClient().GetWorkflow()
	if err != nil {
		return err
	}
	return printWorkflow(wf)
}

// runWorkflowSet 启动新的工作流上下文。
func runWorkflowSet(cmd *cobra.Command, args []string) error {
	step := 0
	if len(args) == 2 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step %q: %w", args[1], err)
		}
		step = parsed
	}

	wf, err := NewClient().SetWorkflow(args[0], step)
	if err != nil {
		return err
	}
	return printWorkflow(wf)
}

// runWorkflowAdvance 推进当前工作流。
func runWorkflowAdvance(cmd *cobra.Command, args []string) error {
	wf, err := NewClient().AdvanceWorkflow(args[0])
	if err != nil {
		return err
	}
	return printWorkflow(wf)
}

// runWorkflowEnd 结束当前工作流。
func runWorkflowEnd(cmd *cobra.Command, args []string) error {
	wf, err := NewClient().EndWorkflow(workflowSuccess)
	if err != nil {
		return err
	}
	return printWorkflow(wf)
}

// printWorkflow 按配置的输出格式打印工作流上下文。
func printWorkflow(wf *Workflow) error {
	switch viper.GetString("output") {
	case "json":
		out, err := json.MarshalIndent(wf, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	case "yaml":
		out, err := yaml.Marshal(wf)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	default:
		fmt.Printf("Workflow: %s (step %d)\n", wf.Name, wf.Step)
		if wf.CurrentStep != "" {
			fmt.Printf("Current step: %s\n", wf.CurrentStep)
		}
		if wf.StartedAt != nil {
			fmt.Printf("Started at: %s\n", wf.StartedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	}
}
