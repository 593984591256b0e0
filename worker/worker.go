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

// Package worker implements the poll/dispatch loop (the worker loop
// component of spec.md section 2): one goroutine repeatedly
// polls for decision tasks and dispatches them to a decider.Decider, one
// polls for activity tasks and dispatches them to an activity.Activity.
// Grounded on
// original_source/pyworkflow/managed/worker/thread.py (WorkerThread's
// stop-event + idle-sleep loop, translated from a Python thread into a
// goroutine with a stop channel) and
// original_source/pyworkflow/managed/worker/decision.py +
// .../worker/activity.py (the decide/execute-then-complete step shape).
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/pborman/uuid"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/uber/workflow-engine/activity"
	"github.com/uber/workflow-engine/common/log"
	"github.com/uber/workflow-engine/common/log/tag"
	"github.com/uber/workflow-engine/common/metrics"
	"github.com/uber/workflow-engine/decider"
	"github.com/uber/workflow-engine/engine"
)

// Config parameterizes a Worker.
type Config struct {
	// Identity identifies this worker to the backend (for diagnostics).
	// Defaults to a fresh uuid when empty.
	Identity string

	// DecisionCategory/ActivityCategory select which task-list category
	// this worker polls; default to engine.Defaults.DecisionCategory and
	// engine.Defaults.DefaultCategory respectively.
	DecisionCategory string
	ActivityCategory string

	// IdleSleep is how long a poller waits after an empty poll before
	// polling again, mirroring WorkerThread's delay_on_idle.
	IdleSleep time.Duration

	Logger  log.Logger
	Metrics *metrics.Client
}

func (c Config) withDefaults() Config {
	if c.Identity == "" {
		c.Identity = uuid.New()
	}
	if c.DecisionCategory == "" {
		c.DecisionCategory = engine.Defaults.DecisionCategory
	}
	if c.ActivityCategory == "" {
		c.ActivityCategory = engine.Defaults.DefaultCategory
	}
	if c.IdleSleep <= 0 {
		c.IdleSleep = time.Second
	}
	if c.Logger == nil {
		c.Logger = log.NewNop()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NewClient(nil)
	}
	return c
}

// Worker polls one engine.Engine for decision and activity tasks and
// dispatches them to registered deciders/activities.
type Worker struct {
	eng    engine.Engine
	cfg    Config
	deciders   map[string]decider.Decider
	activities map[string]activity.Activity

	mu      sync.Mutex
	stopCh  chan struct{}
	wg      sync.WaitGroup
	started atomic.Bool
}

// New builds a Worker against eng. Register deciders/activities before
// calling Start.
func New(eng engine.Engine, cfg Config) *Worker {
	return &Worker{
		eng:        eng,
		cfg:        cfg.withDefaults(),
		deciders:   make(map[string]decider.Decider),
		activities: make(map[string]activity.Activity),
	}
}

// RegisterDecider associates a Decider with a workflow type name.
func (w *Worker) RegisterDecider(workflow string, d decider.Decider) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deciders[workflow] = d
}

// RegisterActivity associates an Activity with an activity type name.
func (w *Worker) RegisterActivity(name string, a activity.Activity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activities[name] = a
}

// Start launches the decision and activity poll loops. Calling Start again
// while the worker is already started does nothing and returns nil.
func (w *Worker) Start(ctx context.Context) error {
	if !w.started.CAS(false, true) {
		return nil
	}
	w.mu.Lock()
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	w.cfg.Logger.Info("worker started", tag.Identity(w.cfg.Identity))

	w.wg.Add(2)
	go w.runDecisionLoop(ctx)
	go w.runActivityLoop(ctx)
	return nil
}

// Stop signals both poll loops to exit and waits for them to drain,
// mirroring WorkerThread.join's stop.set()-then-join sequence. It always
// returns nil: an error from a task step that is still in flight during
// shutdown is logged by its poll loop, not returned here.
func (w *Worker) Stop() error {
	if !w.started.CAS(true, false) {
		return nil
	}
	w.mu.Lock()
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	w.cfg.Logger.Info("worker finished", tag.Identity(w.cfg.Identity))
	return nil
}

func (w *Worker) runDecisionLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		consumed, err := w.stepDecision(ctx)
		if err != nil {
			w.cfg.Logger.Error("decision step failed", tag.Error(err), tag.Identity(w.cfg.Identity))
		}
		if !consumed {
			if !sleepOrStop(w.stopCh, w.cfg.IdleSleep) {
				return
			}
		}
	}
}

func (w *Worker) runActivityLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		consumed, err := w.stepActivity(ctx)
		if err != nil {
			w.cfg.Logger.Error("activity step failed", tag.Error(err), tag.Identity(w.cfg.Identity))
		}
		if !consumed {
			if !sleepOrStop(w.stopCh, w.cfg.IdleSleep) {
				return
			}
		}
	}
}

func sleepOrStop(stopCh <-chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-stopCh:
		return false
	case <-t.C:
		return true
	}
}

// stepDecision polls once, dispatches at most one decision task, and
// reports whether a task was consumed, mirroring DecisionWorker.step.
func (w *Worker) stepDecision(ctx context.Context) (bool, error) {
	task, err := w.eng.PollDecisionTask(ctx, engine.PollRequest{Category: w.cfg.DecisionCategory, Identity: w.cfg.Identity})
	if err != nil || task == nil {
		return false, err
	}

	w.mu.Lock()
	d, ok := w.deciders[task.Process.Workflow]
	w.mu.Unlock()
	if !ok {
		return true, engine.NewInvalidInputError("no decider registered for workflow: " + task.Process.Workflow)
	}

	decisions, err := d.Decide(&task.Process)
	if err != nil {
		return true, multierr.Append(err, w.eng.CompleteDecisionTask(ctx, *task, nil))
	}
	return true, w.eng.CompleteDecisionTask(ctx, *task, decisions)
}

// stepActivity polls once, dispatches at most one activity task, and
// reports whether a task was consumed, mirroring ActivityWorker.step.
func (w *Worker) stepActivity(ctx context.Context) (bool, error) {
	task, err := w.eng.PollActivityTask(ctx, engine.PollRequest{Category: w.cfg.ActivityCategory, Identity: w.cfg.Identity})
	if err != nil || task == nil {
		return false, err
	}

	w.mu.Lock()
	a, ok := w.activities[task.Execution.Activity]
	w.mu.Unlock()
	if !ok {
		outcome := engine.Failed("no activity registered: "+task.Execution.Activity, nil)
		return true, w.eng.CompleteActivityTask(ctx, *task, outcome)
	}
	if activity.IsManual(a) {
		// Result arrives out of band; nothing to complete here.
		return true, nil
	}

	monitor := &engineMonitor{eng: w.eng, task: *task}
	outcome := activity.Execute(ctx, a, task.Execution.Input, monitor)
	return true, w.eng.CompleteActivityTask(ctx, *task, outcome)
}

// engineMonitor adapts engine.Engine.HeartbeatActivity to activity.Monitor.
type engineMonitor struct {
	eng  engine.Engine
	task engine.ActivityTask
}

func (m *engineMonitor) Heartbeat(ctx context.Context) error {
	return m.eng.HeartbeatActivity(ctx, m.task)
}
