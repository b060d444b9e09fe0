package aggregator

import (
	"time"

	"github.com/oriys/cockpit/internal/domain"
)

// 工作流上下文追踪器。
//
// 工作流上下文是服务实例持有的单一可变值，描述"当前进行中的高层操作"。
// 每条日志条目在创建时拍下它的一份副本，之后的转换不会回溯修改历史条目。
// 每次转换本身会产生一条 INFO 级审计条目，因此工作流转换是自记录的。
// 上下文假定单写者，不针对并发的工作流变更做保护。

// Workflow 返回当前工作流上下文的副本。
func (s *Service) Workflow() domain.WorkflowSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflow
}

// SetWorkflow 将工作流上下文替换为 {name, step, startedAt=now}。
func (s *Service) SetWorkflow(name string, step int) {
	now := time.Now()
	s.mu.Lock()
	s.workflow = domain.WorkflowSnapshot{
		Name:      name,
		Step:      step,
		StartedAt: &now,
	}
	s.mu.Unlock()

	s.Log(domain.LevelInfo, "workflow", "SetWorkflow",
		"Workflow started: "+name,
		map[string]any{"name": name, "step": step},
		domain.CategoryDefault)
}

// AdvanceWorkflow 将当前步骤序号加一并原地记录步骤名称。
func (s *Service) AdvanceWorkflow(stepName string) {
	s.mu.Lock()
	s.workflow.Step++
	s.workflow.CurrentStep = stepName
	name := s.workflow.Name
	step := s.workflow.Step
	s.mu.Unlock()

	s.Log(domain.LevelInfo, "workflow", "AdvanceWorkflow",
		"Workflow step: "+stepName,
		map[string]any{"name": name, "step": step, "step_name": stepName},
		domain.CategoryDefault)
}

// EndWorkflow 将工作流上下文重置为 idle，并记录结束结果。
func (s *Service) EndWorkflow(success bool) {
	s.mu.Lock()
	name := s.workflow.Name
	s.workflow = domain.WorkflowSnapshot{Name: "idle", Step: 0}
	s.mu.Unlock()

	outcome := "success"
	if !success {
		outcome = "failure"
	}
	s.Log(domain.LevelInfo, "workflow", "EndWorkflow",
		"Workflow ended: "+name+" ("+outcome+")",
		map[string]any{"name": name, "success": success},
		domain.CategoryDefault)
}
