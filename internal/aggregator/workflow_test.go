// Package aggregator 实现日志聚合与实时订阅服务。
package aggregator

import (
	"testing"

	"github.com/oriys/cockpit/internal/domain"
)

// TestWorkflowInitialState 测试工作流上下文初始为 idle。
func TestWorkflowInitialState(t *testing.T) {
	svc := newTestService(nil)
	wf := svc.Workflow()
	if wf.Name != "idle" || wf.Step != 0 {
		t.Errorf("initial workflow = %+v, want {idle 0}", wf)
	}
}

// TestSetWorkflow 测试启动工作流替换上下文并自记录一条审计条目。
func TestSetWorkflow(t *testing.T) {
	svc := newTestService(nil)
	svc.SetWorkflow("content-generation", 0)

	wf := svc.Workflow()
	if wf.Name != "content-generation" || wf.Step != 0 {
		t.Errorf("workflow = %+v, want {content-generation 0}", wf)
	}
	if wf.StartedAt == nil {
		t.Error("StartedAt not set")
	}

	// 转换自记录：恰好一条 INFO 条目
	entries := svc.GetAll()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 self-logging entry", len(entries))
	}
	if entries[0].Level != domain.LevelInfo || entries[0].Component != "workflow" {
		t.Errorf("audit entry = %+v, want INFO from workflow component", entries[0])
	}
}

// TestAdvanceWorkflow 测试步进递增序号并记录步骤名称。
func TestAdvanceWorkflow(t *testing.T) {
	svc := newTestService(nil)
	svc.SetWorkflow("content-generation", 0)
	svc.AdvanceWorkflow("crawl sources")
	svc.AdvanceWorkflow("extract chunks")

	wf := svc.Workflow()
	if wf.Step != 2 {
		t.Errorf("Step = %d, want 2", wf.Step)
	}
	if wf.CurrentStep != "extract chunks" {
		t.Errorf("CurrentStep = %q, want %q", wf.CurrentStep, "extract chunks")
	}
}

// TestEndWorkflow 测试结束后上下文重置为 idle。
func TestEndWorkflow(t *testing.T) {
	svc := newTestService(nil)
	svc.SetWorkflow("content-generation", 0)
	svc.EndWorkflow(false)

	wf := svc.Workflow()
	if wf.Name != "idle" || wf.Step != 0 {
		t.Errorf("workflow after end = %+v, want {idle 0}", wf)
	}
	if wf.StartedAt != nil || wf.CurrentStep != "" {
		t.Errorf("workflow after end should have no StartedAt/CurrentStep, got %+v", wf)
	}
}

// TestEntriesCarrySnapshotCopy 测试条目携带创建时刻的快照副本，
// 之后的工作流转换不会回溯修改已创建的条目。
func TestEntriesCarrySnapshotCopy(t *testing.T) {
	svc := newTestService(nil)
	svc.SetWorkflow("content-generation", 0)

	entry := svc.Log(domain.LevelInfo, "crawler", "", "during workflow", nil, domain.CategoryDefault)
	if entry.Workflow.Name != "content-generation" {
		t.Fatalf("entry.Workflow.Name = %q, want content-generation", entry.Workflow.Name)
	}

	svc.AdvanceWorkflow("next step")
	svc.EndWorkflow(true)

	// 已在缓冲区中的条目保持当时的快照
	for _, e := range svc.GetAll() {
		if e.ID == entry.ID {
			if e.Workflow.Name != "content-generation" || e.Workflow.Step != 0 {
				t.Errorf("stored entry workflow = %+v, mutated retroactively", e.Workflow)
			}
			return
		}
	}
	t.Fatal("entry not found in store")
}

// TestWorkflowTransitionsSelfLog 测试完整的转换序列各自产生审计条目。
func TestWorkflowTransitionsSelfLog(t *testing.T) {
	svc := newTestService(nil)
	svc.SetWorkflow("run", 0)
	svc.AdvanceWorkflow("step one")
	svc.EndWorkflow(true)

	entries := svc.GetAll()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3 (one per transition)", len(entries))
	}

	wantFuncs := []string{"SetWorkflow", "AdvanceWorkflow", "EndWorkflow"}
	for i, fn := range wantFuncs {
		if entries[i].Function != fn {
			t.Errorf("entry %d Function = %q, want %q", i, entries[i].Function, fn)
		}
	}
}
