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

package persistence

import (
	"context"

	"github.com/pborman/uuid"

	"github.com/uber/workflow-engine/common/log"
	"github.com/uber/workflow-engine/common/log/tag"
	"github.com/uber/workflow-engine/common/metrics"
	"github.com/uber/workflow-engine/engine"
	"github.com/uber/workflow-engine/engine/broker"
)

// Backend is an engine.Engine over any Store: process identity/history
// live in Store, task scheduling lives in an in-process broker.Broker,
// exactly as backend/memory does against a plain map. backend/sql and
// backend/cassandra both construct a Backend from their respective Store
// implementation rather than re-implementing the engine.Engine methods
// per storage technology.
type Backend struct {
	store   Store
	broker  *broker.Broker
	logger  log.Logger
	metrics *metrics.Client
	cfg     *engine.Config
}

var _ engine.Engine = (*Backend)(nil)

// NewBackend builds a Backend over store, loading every running process
// and re-scheduling its decision task to recover from a restart (task
// scheduling state does not itself survive in Store).
func NewBackend(ctx context.Context, store Store, cfg *engine.Config) (*Backend, error) {
	if cfg == nil {
		cfg = engine.NewConfig()
	}
	b := &Backend{
		store:   store,
		broker:  broker.New(cfg),
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		cfg:     cfg,
	}

	processes, err := store.ListProcesses(ctx, engine.ListProcessesRequest{})
	if err != nil {
		return nil, err
	}
	recovered := 0
	for i := range processes {
		p := processes[i]
		if p.IsRunning() {
			b.broker.ScheduleDecision(&p)
			recovered++
		}
	}
	b.logger.Info("persistence backend recovered processes", tag.Count(recovered))
	return b, nil
}

// RegisterWorkflow implements engine.Engine.
func (b *Backend) RegisterWorkflow(name string, config engine.WorkflowType) error {
	return b.broker.RegisterWorkflow(name, config)
}

// RegisterActivity implements engine.Engine.
func (b *Backend) RegisterActivity(name string, config engine.ActivityType) error {
	return b.broker.RegisterActivity(name, config)
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

	if err := b.store.SaveProcess(ctx, process); err != nil {
		return err
	}
	b.broker.ScheduleDecision(process)
	b.metrics.IncCounter(metrics.StartProcessScope, metrics.RequestCount)
	return nil
}

// SignalProcess implements engine.Engine.
func (b *Backend) SignalProcess(ctx context.Context, processID, name string, data []byte) error {
	process, err := b.store.LoadProcess(ctx, processID)
	if err != nil {
		return err
	}
	process.History = append(process.History, engine.NewSignalEvent(b.cfg.Now(), name, data))
	if err := b.store.SaveProcess(ctx, process); err != nil {
		return err
	}
	b.broker.ScheduleDecision(process)
	b.metrics.IncCounter(metrics.SignalProcessScope, metrics.RequestCount)
	return nil
}

// CancelProcess implements engine.Engine.
func (b *Backend) CancelProcess(ctx context.Context, processID string, details []byte, reason string) error {
	process, err := b.store.LoadProcess(ctx, processID)
	if err != nil {
		return err
	}
	decision := engine.NewCancelProcessDecision(details, reason)
	process.History = append(process.History, engine.NewDecisionEvent(b.cfg.Now(), decision))
	if err := b.store.SaveProcess(ctx, process); err != nil {
		return err
	}
	b.broker.CancelDecision(processID)
	if err := b.notifyParent(ctx, process, decision); err != nil {
		return err
	}
	b.metrics.IncCounter(metrics.CancelProcessScope, metrics.RequestCount)
	return nil
}

// notifyParent appends a ChildProcess event to process's parent, if any,
// once process reaches a terminal decision, and schedules the parent's
// next decision (spec.md section 4.2: "if parent exists, append a
// ChildProcess event on parent and schedule parent decision"). A missing
// parent (already completed, or never persisted) is not an error.
func (b *Backend) notifyParent(ctx context.Context, process *engine.Process, terminal engine.Decision) error {
	if !process.HasParent() {
		return nil
	}

	parent, err := b.store.LoadProcess(ctx, process.ParentID)
	if engine.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var outcome engine.Outcome
	switch terminal.Kind {
	case engine.DecisionCompleteProcess:
		outcome = engine.Completed(terminal.CompleteProcess.Result)
	case engine.DecisionCancelProcess:
		outcome = engine.Canceled(terminal.CancelProcess.Details)
	default:
		return nil
	}

	parent.History = append(parent.History, engine.NewChildProcessEvent(b.cfg.Now(), process.ID, process.Workflow, process.Tags, outcome))
	if err := b.store.SaveProcess(ctx, parent); err != nil {
		return err
	}
	b.broker.ScheduleDecision(parent)
	return nil
}

// ListProcesses implements engine.Engine.
func (b *Backend) ListProcesses(ctx context.Context, req engine.ListProcessesRequest) (engine.ProcessIterator, error) {
	processes, err := b.store.ListProcesses(ctx, req)
	if err != nil {
		return nil, err
	}
	var running []engine.Process
	for _, p := range processes {
		if p.IsRunning() {
			running = append(running, p)
		}
	}
	return engine.NewSliceIterator(running), nil
}

// ProcessByID implements engine.Engine.
func (b *Backend) ProcessByID(ctx context.Context, id string) (*engine.Process, error) {
	return b.store.LoadProcess(ctx, id)
}

// PollDecisionTask implements engine.Engine. Callers are expected to be a
// worker.Worker, which already sleeps between empty polls, so an empty
// poll here returns immediately rather than blocking in-process.
func (b *Backend) PollDecisionTask(ctx context.Context, req engine.PollRequest) (*engine.DecisionTask, error) {
	process, taskCtx, ok := b.broker.PollDecision()
	if !ok {
		return nil, nil
	}
	process.History = append(process.History, engine.NewDecisionStartedEvent(b.cfg.Now()))
	if err := b.store.SaveProcess(ctx, process); err != nil {
		return nil, err
	}
	b.metrics.IncCounter(metrics.PollDecisionTaskScope, metrics.RequestCount)
	return &engine.DecisionTask{Process: *process, Context: taskCtx}, nil
}

// PollActivityTask implements engine.Engine.
func (b *Backend) PollActivityTask(ctx context.Context, req engine.PollRequest) (*engine.ActivityTask, error) {
	process, execution, taskCtx, ok := b.broker.PollActivity()
	if !ok {
		return nil, nil
	}
	process.History = append(process.History, engine.NewActivityStartedEvent(b.cfg.Now(), execution))
	if err := b.store.SaveProcess(ctx, process); err != nil {
		return nil, err
	}
	b.metrics.IncCounter(metrics.PollActivityTaskScope, metrics.RequestCount)
	return &engine.ActivityTask{Execution: execution, ProcessID: process.ID, Context: taskCtx}, nil
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
	process, children, ok := b.broker.CompleteDecision(task.Context.RunID, decisions)
	if !ok {
		return engine.NewTimedOutError(engine.KindDecision, task.Context.RunID)
	}

	for _, child := range children {
		if err := b.store.SaveProcess(ctx, child); err != nil {
			return err
		}
	}

	var terminal *engine.Decision
	for i := range decisions {
		if decisions[i].Kind == engine.DecisionCompleteProcess || decisions[i].Kind == engine.DecisionCancelProcess {
			terminal = &decisions[i]
		}
	}
	if terminal != nil {
		if err := b.store.DeleteProcess(ctx, process.ID); err != nil {
			return err
		}
		if err := b.notifyParent(ctx, process, *terminal); err != nil {
			return err
		}
	} else if err := b.store.SaveProcess(ctx, process); err != nil {
		return err
	}

	b.metrics.IncCounter(metrics.CompleteDecisionTaskScope, metrics.RequestCount)
	return nil
}

// CompleteActivityTask implements engine.Engine.
func (b *Backend) CompleteActivityTask(ctx context.Context, task engine.ActivityTask, result engine.Outcome) error {
	process, _, ok := b.broker.CompleteActivity(task.Context.RunID, result)
	if !ok {
		return engine.NewTimedOutError(engine.KindActivity, task.Context.RunID)
	}
	if err := b.store.SaveProcess(ctx, process); err != nil {
		return err
	}
	b.metrics.IncCounter(metrics.CompleteActivityTaskScope, metrics.RequestCount)
	return nil
}

// Close releases the underlying Store.
func (b *Backend) Close() error {
	return b.store.Close()
}
