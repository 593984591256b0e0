// Copyright (c) 2017 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package memory implements engine.Engine entirely in process memory,
// grounded directly on
// original_source/pyworkflow/backend/memory/__init__.py. It is the
// reference backend for the scheduling behavior in engine/broker; the
// other backends in this module (backend/sql, backend/cassandra,
// backend/swf) have their own package tests and are not run against this
// package's test scenarios.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pborman/uuid"

	"github.com/uber/workflow-engine/common/log"
	"github.com/uber/workflow-engine/common/log/tag"
	"github.com/uber/workflow-engine/common/metrics"
	"github.com/uber/workflow-engine/engine"
	"github.com/uber/workflow-engine/engine/broker"
)

// Backend is the in-memory engine.Engine implementation.
type Backend struct {
	broker *broker.Broker

	mu        sync.RWMutex
	processes map[string]*engine.Process

	logger  log.Logger
	metrics *metrics.Client
	cfg     *engine.Config
}

var _ engine.Engine = (*Backend)(nil)

// New builds an empty Backend. A nil Config falls back to engine.NewConfig().
func New(cfg *engine.Config) *Backend {
	if cfg == nil {
		cfg = engine.NewConfig()
	}
	return &Backend{
		broker:    broker.New(cfg),
		processes: make(map[string]*engine.Process),
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		cfg:       cfg,
	}
}

// RegisterWorkflow implements engine.Engine.
func (b *Backend) RegisterWorkflow(name string, config engine.WorkflowType) error {
	if err := b.broker.RegisterWorkflow(name, config); err != nil {
		return err
	}
	b.logger.Debug("registered workflow", tag.Workflow(name))
	return nil
}

// RegisterActivity implements engine.Engine.
func (b *Backend) RegisterActivity(name string, config engine.ActivityType) error {
	if err := b.broker.RegisterActivity(name, config); err != nil {
		return err
	}
	b.logger.Debug("registered activity", tag.Activity(name))
	return nil
}

// StartProcess implements engine.Engine.
func (b *Backend) StartProcess(ctx context.Context, process *engine.Process) error {
	if process.ID == "" {
		process.ID = uuid.New()
	}
	if _, ok := b.broker.WorkflowType(process.Workflow); !ok {
		return engine.NewInvalidInputError("unregistered workflow: " + process.Workflow)
	}
	process.History = append(process.History, engine.NewProcessStartedEvent(b.cfg.Now()))

	b.mu.Lock()
	b.processes[process.ID] = process
	b.mu.Unlock()

	b.broker.ScheduleDecision(process)
	b.metrics.IncCounter(metrics.StartProcessScope, metrics.RequestCount)
	b.logger.Info("started process", tag.ProcessID(process.ID), tag.Workflow(process.Workflow))
	return nil
}

// SignalProcess implements engine.Engine.
func (b *Backend) SignalProcess(ctx context.Context, processID, name string, data []byte) error {
	process, err := b.lookup(processID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	process.History = append(process.History, engine.NewSignalEvent(b.cfg.Now(), name, data))
	b.mu.Unlock()

	b.broker.ScheduleDecision(process)
	b.metrics.IncCounter(metrics.SignalProcessScope, metrics.RequestCount)
	b.logger.Info("signaled process", tag.ProcessID(processID), tag.SignalName(name))
	return nil
}

// CancelProcess implements engine.Engine.
func (b *Backend) CancelProcess(ctx context.Context, processID string, details []byte, reason string) error {
	process, err := b.lookup(processID)
	if err != nil {
		return err
	}

	decision := engine.NewCancelProcessDecision(details, reason)
	b.mu.Lock()
	process.History = append(process.History, engine.NewDecisionEvent(b.cfg.Now(), decision))
	delete(b.processes, processID)
	b.mu.Unlock()

	b.broker.CancelDecision(processID)
	b.notifyParent(process, decision)
	b.metrics.IncCounter(metrics.CancelProcessScope, metrics.RequestCount)
	b.logger.Info("canceled process", tag.ProcessID(processID))
	return nil
}

// ListProcesses implements engine.Engine. The in-memory store has no
// pagination, so the whole filtered slice is materialized up front and
// wrapped with engine.NewSliceIterator.
func (b *Backend) ListProcesses(ctx context.Context, req engine.ListProcessesRequest) (engine.ProcessIterator, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matched []engine.Process
	for _, p := range b.processes {
		if req.Workflow != "" && p.Workflow != req.Workflow {
			continue
		}
		if req.Tag != "" && !hasTag(p.Tags, req.Tag) {
			continue
		}
		matched = append(matched, *p)
	}
	b.metrics.IncCounter(metrics.ListProcessesScope, metrics.RequestCount)
	return engine.NewSliceIterator(matched), nil
}

func hasTag(tags []string, t string) bool {
	for _, candidate := range tags {
		if candidate == t {
			return true
		}
	}
	return false
}

// ProcessByID implements engine.Engine.
func (b *Backend) ProcessByID(ctx context.Context, id string) (*engine.Process, error) {
	process, err := b.lookup(id)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	cp := *process
	cp.History = append([]engine.Event(nil), process.History...)
	return &cp, nil
}

func (b *Backend) lookup(id string) (*engine.Process, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	process, ok := b.processes[id]
	if !ok {
		return nil, engine.NewUnknownProcessError(id)
	}
	return process, nil
}

// PollDecisionTask implements engine.Engine, blocking up to cfg.PollTimeout
// while no decision task is ready.
func (b *Backend) PollDecisionTask(ctx context.Context, req engine.PollRequest) (*engine.DecisionTask, error) {
	deadline := b.cfg.Now().Add(b.cfg.PollTimeout)
	for {
		if process, taskCtx, ok := b.broker.PollDecision(); ok {
			b.mu.Lock()
			process.History = append(process.History, engine.NewDecisionStartedEvent(b.cfg.Now()))
			b.mu.Unlock()
			b.metrics.IncCounter(metrics.PollDecisionTaskScope, metrics.RequestCount)
			return &engine.DecisionTask{Process: *process, Context: taskCtx}, nil
		}
		if b.cfg.PollTimeout <= 0 || !b.cfg.Now().Before(deadline) {
			return nil, nil
		}
		if err := sleep(ctx, pollInterval); err != nil {
			return nil, err
		}
	}
}

// PollActivityTask implements engine.Engine with the same blocking contract
// as PollDecisionTask.
func (b *Backend) PollActivityTask(ctx context.Context, req engine.PollRequest) (*engine.ActivityTask, error) {
	deadline := b.cfg.Now().Add(b.cfg.PollTimeout)
	for {
		if process, execution, taskCtx, ok := b.broker.PollActivity(); ok {
			b.mu.Lock()
			process.History = append(process.History, engine.NewActivityStartedEvent(b.cfg.Now(), execution))
			b.mu.Unlock()
			b.metrics.IncCounter(metrics.PollActivityTaskScope, metrics.RequestCount)
			return &engine.ActivityTask{Execution: execution, ProcessID: process.ID, Context: taskCtx}, nil
		}
		if b.cfg.PollTimeout <= 0 || !b.cfg.Now().Before(deadline) {
			return nil, nil
		}
		if err := sleep(ctx, pollInterval); err != nil {
			return nil, err
		}
	}
}

// pollInterval is how often an empty poll re-checks the broker while
// within its PollTimeout window.
const pollInterval = 10 * time.Millisecond

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// HeartbeatActivity implements engine.Engine.
func (b *Backend) HeartbeatActivity(ctx context.Context, task engine.ActivityTask) error {
	if !b.broker.Heartbeat(task.Context.RunID) {
		return engine.NewTimedOutError(engine.KindActivity, task.Context.RunID)
	}
	b.metrics.IncCounter(metrics.HeartbeatActivityScope, metrics.RequestCount)
	return nil
}

// CompleteDecisionTask implements engine.Engine.
func (b *Backend) CompleteDecisionTask(ctx context.Context, task engine.DecisionTask, decisions []engine.Decision) error {
	b.mu.Lock()
	process, ok := b.processes[task.Process.ID]
	b.mu.Unlock()
	if !ok {
		return engine.NewUnknownProcessError(task.Process.ID)
	}

	b.mu.Lock()
	_, children, ok := b.broker.CompleteDecision(task.Context.RunID, decisions)
	b.mu.Unlock()
	if !ok {
		return engine.NewTimedOutError(engine.KindDecision, task.Context.RunID)
	}

	if len(children) > 0 {
		b.mu.Lock()
		for _, child := range children {
			b.processes[child.ID] = child
		}
		b.mu.Unlock()
	}

	for _, d := range decisions {
		if d.Kind == engine.DecisionCompleteProcess || d.Kind == engine.DecisionCancelProcess {
			b.mu.Lock()
			delete(b.processes, process.ID)
			b.mu.Unlock()
			b.notifyParent(process, d)
		}
		if d.Kind == engine.DecisionTimer {
			timer := d
			go b.fireTimerAfter(process, timer)
		}
	}

	b.metrics.IncCounter(metrics.CompleteDecisionTaskScope, metrics.RequestCount)
	b.logger.Info("completed decision task", tag.ProcessID(process.ID), tag.RunID(task.Context.RunID), tag.Count(len(decisions)))
	return nil
}

// notifyParent appends a ChildProcess event to process's parent, if any,
// once process reaches a terminal decision, and schedules the parent's
// next decision (spec.md section 4.2: "if parent exists, append a
// ChildProcess event on parent and schedule parent decision").
func (b *Backend) notifyParent(process *engine.Process, terminal engine.Decision) {
	if !process.HasParent() {
		return
	}

	b.mu.Lock()
	parent, ok := b.processes[process.ParentID]
	b.mu.Unlock()
	if !ok {
		return
	}

	var outcome engine.Outcome
	switch terminal.Kind {
	case engine.DecisionCompleteProcess:
		outcome = engine.Completed(terminal.CompleteProcess.Result)
	case engine.DecisionCancelProcess:
		outcome = engine.Canceled(terminal.CancelProcess.Details)
	default:
		return
	}

	b.mu.Lock()
	parent.History = append(parent.History, engine.NewChildProcessEvent(b.cfg.Now(), process.ID, process.Workflow, process.Tags, outcome))
	b.mu.Unlock()
	b.broker.ScheduleDecision(parent)
}

func (b *Backend) fireTimerAfter(process *engine.Process, timer engine.Decision) {
	if timer.Timer == nil {
		return
	}
	delay := timer.Timer.Delay
	if delay > 0 {
		time.Sleep(delay)
	}
	b.broker.FireTimer(process, timer)
}

// CompleteActivityTask implements engine.Engine.
func (b *Backend) CompleteActivityTask(ctx context.Context, task engine.ActivityTask, result engine.Outcome) error {
	_, _, ok := b.broker.CompleteActivity(task.Context.RunID, result)
	if !ok {
		return engine.NewTimedOutError(engine.KindActivity, task.Context.RunID)
	}
	b.metrics.IncCounter(metrics.CompleteActivityTaskScope, metrics.RequestCount)
	return nil
}

// QueueDepths publishes the broker's four structure sizes as gauges,
// intended to be called periodically by a host application
// (SPEC_FULL.md DOMAIN STACK, metrics).
func (b *Backend) QueueDepths() {
	sd, rd, sa, ra := b.broker.Gauges()
	b.metrics.UpdateGauge(metrics.SweepDecisionsScope, metrics.ScheduledDecisionsGauge, float64(sd))
	b.metrics.UpdateGauge(metrics.SweepDecisionsScope, metrics.RunningDecisionsGauge, float64(rd))
	b.metrics.UpdateGauge(metrics.SweepActivitiesScope, metrics.ScheduledActivitiesGauge, float64(sa))
	b.metrics.UpdateGauge(metrics.SweepActivitiesScope, metrics.RunningActivitiesGauge, float64(ra))
}
