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

// Package broker implements the task broker (spec.md section 4.2): the
// four structures — scheduled decisions, scheduled activities, running
// decisions, running activities — and the scheduling, dequeue, expiration,
// and completion algorithms that move entries between them.
//
// The algorithm is a direct, mutex-guarded translation of
// original_source/pyworkflow/backend/memory/__init__.py. Where the
// original relies on a single-threaded process, Broker guards every
// structure with one mutex: the four tables are small and the critical
// sections are short, so one lock is simpler than per-table locking and
// still satisfies the at-most-one-task-in-flight-per-process invariant
// (spec.md section 3, invariant 3).
package broker

import (
	"fmt"
	"sync"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/pborman/uuid"

	"github.com/uber/workflow-engine/common/log"
	"github.com/uber/workflow-engine/common/log/tag"
	"github.com/uber/workflow-engine/common/metrics"
	"github.com/uber/workflow-engine/engine"
)

// scheduledDecision is one entry of the scheduled-decisions queue.
type scheduledDecision struct {
	process    *engine.Process
	expiration time.Time
}

// scheduledActivity is one entry of the scheduled-activities queue.
type scheduledActivity struct {
	execution  engine.ActivityExecution
	process    *engine.Process
	category   string
	expiration time.Time
}

// runningDecision is the running-decisions table entry, keyed by run-id.
type runningDecision struct {
	process    *engine.Process
	expiration time.Time
}

// runningActivity is the running-activities table entry, keyed by run-id.
type runningActivity struct {
	execution           engine.ActivityExecution
	process             *engine.Process
	expiration          time.Time
	heartbeatExpiration time.Time
	manualComplete      bool
}

// Broker holds the four task structures shared by every backend that
// needs decision/activity scheduling (backend/memory directly,
// backend/sql and backend/cassandra for the in-process dispatch half of
// their otherwise-persistent implementation).
type Broker struct {
	mu sync.Mutex

	workflows  map[string]engine.WorkflowType
	activities map[string]engine.ActivityType

	scheduledDecisions  []*scheduledDecision
	scheduledActivities []*scheduledActivity
	runningDecisions    map[string]*runningDecision
	runningActivities   map[string]*runningActivity

	clock   engine.Clock
	logger  log.Logger
	metrics *metrics.Client
}

// New builds an empty Broker. A nil Config falls back to engine.NewConfig().
func New(cfg *engine.Config) *Broker {
	if cfg == nil {
		cfg = engine.NewConfig()
	}
	return &Broker{
		workflows:         make(map[string]engine.WorkflowType),
		activities:        make(map[string]engine.ActivityType),
		runningDecisions:  make(map[string]*runningDecision),
		runningActivities: make(map[string]*runningActivity),
		clock:             cfg.Clock,
		logger:            cfg.Logger,
		metrics:           cfg.Metrics,
	}
}

func (b *Broker) now() time.Time {
	if b.clock == nil {
		return time.Now()
	}
	return b.clock.Now()
}

// RegisterWorkflow records a workflow type's timeouts. Re-registering an
// existing name with a lower Version is rejected rather than silently
// downgrading every process already scheduled against it.
func (b *Broker) RegisterWorkflow(name string, config engine.WorkflowType) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.workflows[name]; ok {
		if err := checkVersionUpgrade(existing.Version, config.Version); err != nil {
			return fmt.Errorf("workflow %q: %w", name, err)
		}
	}
	b.workflows[name] = config
	return nil
}

// RegisterActivity records an activity type's timeouts, with the same
// version-downgrade check as RegisterWorkflow.
func (b *Broker) RegisterActivity(name string, config engine.ActivityType) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.activities[name]; ok {
		if err := checkVersionUpgrade(existing.Version, config.Version); err != nil {
			return fmt.Errorf("activity %q: %w", name, err)
		}
	}
	b.activities[name] = config
	return nil
}

// checkVersionUpgrade rejects registering a lower version over a higher
// one already on file. Empty versions are treated as "0.0.0" so types
// that never opt into versioning always compare as equal.
func checkVersionUpgrade(existing, next string) error {
	if existing == "" {
		existing = "0.0.0"
	}
	if next == "" {
		next = "0.0.0"
	}
	existingVersion, err := goversion.NewVersion(existing)
	if err != nil {
		return fmt.Errorf("invalid registered version %q: %w", existing, err)
	}
	nextVersion, err := goversion.NewVersion(next)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", next, err)
	}
	if nextVersion.LessThan(existingVersion) {
		return fmt.Errorf("version %s is older than registered version %s", next, existing)
	}
	return nil
}

// WorkflowType looks up a previously registered workflow type.
func (b *Broker) WorkflowType(name string) (engine.WorkflowType, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	wf, ok := b.workflows[name]
	return wf, ok
}

// ActivityType looks up a previously registered activity type.
func (b *Broker) ActivityType(name string) (engine.ActivityType, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	at, ok := b.activities[name]
	return at, ok
}

// scheduleDecisionLocked enqueues a decision task for process unless one is
// already scheduled or already running (spec.md section 3, invariant 3:
// at most one task in flight per process). Must be called with mu held.
func (b *Broker) scheduleDecisionLocked(process *engine.Process) {
	for _, sd := range b.scheduledDecisions {
		if sd.process.ID == process.ID {
			return
		}
	}
	for _, rd := range b.runningDecisions {
		if rd.process.ID == process.ID {
			return
		}
	}

	wf := b.workflows[process.Workflow]
	timeout := wf.DecisionTimeout
	if timeout <= 0 {
		timeout = engine.Defaults.DecisionTimeout
	}
	b.scheduledDecisions = append(b.scheduledDecisions, &scheduledDecision{
		process:    process,
		expiration: b.now().Add(timeout),
	})
}

// ScheduleDecision is the exported, locking form of scheduleDecisionLocked.
func (b *Broker) ScheduleDecision(process *engine.Process) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scheduleDecisionLocked(process)
}

func (b *Broker) cancelDecisionLocked(processID string) {
	out := b.scheduledDecisions[:0]
	for _, sd := range b.scheduledDecisions {
		if sd.process.ID != processID {
			out = append(out, sd)
		}
	}
	b.scheduledDecisions = out

	for runID, rd := range b.runningDecisions {
		if rd.process.ID == processID {
			delete(b.runningDecisions, runID)
		}
	}
}

// CancelDecision removes any scheduled or running decision task for a
// process, used when a process is canceled (spec.md section 4.1, CancelProcess).
func (b *Broker) CancelDecision(processID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelDecisionLocked(processID)
}

// scheduleActivityLocked enqueues an activity task. Must be called with mu held.
func (b *Broker) scheduleActivityLocked(process *engine.Process, category string, execution engine.ActivityExecution) {
	at := b.activities[execution.Activity]
	timeout := at.ScheduledTimeout
	if timeout <= 0 {
		timeout = engine.Defaults.ActivityScheduledTimeout
	}
	b.scheduledActivities = append(b.scheduledActivities, &scheduledActivity{
		execution:  execution,
		process:    process,
		category:   category,
		expiration: b.now().Add(timeout),
	})
}

// ScheduleActivity is the exported, locking form of scheduleActivityLocked.
func (b *Broker) ScheduleActivity(process *engine.Process, category string, execution engine.ActivityExecution) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scheduleActivityLocked(process, category, execution)
}

// cancelActivityLocked removes a scheduled or running activity task by id,
// wherever in the process's activities it currently sits, appending
// `Activity(execution, Canceled)` to its process's history (spec.md section
// 5, "Cancellation & timeouts"). Must be called with mu held.
func (b *Broker) cancelActivityLocked(processID, activityID string) {
	now := b.now()

	out := b.scheduledActivities[:0]
	for _, sa := range b.scheduledActivities {
		if sa.process.ID == processID && sa.execution.ID == activityID {
			sa.process.History = append(sa.process.History, engine.NewActivityEvent(now, sa.execution, engine.Canceled(nil)))
			continue
		}
		out = append(out, sa)
	}
	b.scheduledActivities = out

	for runID, ra := range b.runningActivities {
		if ra.process.ID == processID && ra.execution.ID == activityID {
			ra.process.History = append(ra.process.History, engine.NewActivityEvent(now, ra.execution, engine.Canceled(nil)))
			delete(b.runningActivities, runID)
		}
	}
}

// CancelActivity is the exported, locking form of cancelActivityLocked.
func (b *Broker) CancelActivity(processID, activityID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelActivityLocked(processID, activityID)
}

// timeOutActivitiesLocked moves expired scheduled/running activities into
// their process's history as TimedOut and re-schedules a decision, mirroring
// _time_out_activities in the original memory backend.
func (b *Broker) timeOutActivitiesLocked(now time.Time) []*engine.Process {
	var touched []*engine.Process

	remaining := b.scheduledActivities[:0]
	for _, sa := range b.scheduledActivities {
		if sa.expiration.After(now) {
			remaining = append(remaining, sa)
			continue
		}
		b.timeOutActivity(sa.process, sa.execution)
		touched = append(touched, sa.process)
	}
	b.scheduledActivities = remaining

	for runID, ra := range b.runningActivities {
		if ra.expiration.After(now) && ra.heartbeatExpiration.After(now) {
			continue
		}
		delete(b.runningActivities, runID)
		b.timeOutActivity(ra.process, ra.execution)
		touched = append(touched, ra.process)
	}

	return touched
}

func (b *Broker) timeOutActivity(process *engine.Process, execution engine.ActivityExecution) {
	process.History = append(process.History, engine.NewActivityEvent(b.now(), execution, engine.TimedOut(nil)))
	b.scheduleDecisionLocked(process)
	if b.metrics != nil {
		b.metrics.IncCounter(metrics.SweepActivitiesScope, metrics.ActivityTimedOutCount)
	}
	b.logger.Info("activity timed out", tag.ProcessID(process.ID), tag.ActivityID(execution.ID))
}

// timeOutDecisionsLocked reclaims running decisions past their expiration
// back onto the scheduled queue, mirroring _time_out_decisions.
func (b *Broker) timeOutDecisionsLocked(now time.Time) {
	for runID, rd := range b.runningDecisions {
		if rd.expiration.After(now) {
			continue
		}
		delete(b.runningDecisions, runID)
		b.scheduleDecisionLocked(rd.process)
		if b.metrics != nil {
			b.metrics.IncCounter(metrics.SweepDecisionsScope, metrics.DecisionRetriedCount)
		}
	}
}

// Sweep runs both expiration passes; called at the top of every poll, and
// may also be invoked periodically by a background sweeper (spec.md
// section 4.2, "Expiration").
func (b *Broker) Sweep() []*engine.Process {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	touched := b.timeOutActivitiesLocked(now)
	b.timeOutDecisionsLocked(now)
	return touched
}

// PollDecision dequeues the oldest unexpired scheduled decision, moving it
// to running-decisions under a fresh run-id. Returns nil if none are ready.
func (b *Broker) PollDecision() (*engine.Process, engine.TaskContext, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.timeOutActivitiesLocked(now)
	b.timeOutDecisionsLocked(now)

	for len(b.scheduledDecisions) > 0 {
		sd := b.scheduledDecisions[0]
		b.scheduledDecisions = b.scheduledDecisions[1:]
		if sd.expiration.Before(now) {
			continue
		}

		runID := uuid.New()
		wf := b.workflows[sd.process.Workflow]
		timeout := wf.Timeout
		if timeout <= 0 {
			timeout = engine.Defaults.WorkflowTimeout
		}
		b.runningDecisions[runID] = &runningDecision{
			process:    sd.process,
			expiration: now.Add(timeout),
		}
		return sd.process, engine.TaskContext{RunID: runID}, true
	}
	return nil, engine.TaskContext{}, false
}

// PollActivity dequeues the oldest unexpired scheduled activity, moving it
// to running-activities under a fresh run-id.
func (b *Broker) PollActivity() (*engine.Process, engine.ActivityExecution, engine.TaskContext, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.timeOutActivitiesLocked(now)

	for len(b.scheduledActivities) > 0 {
		sa := b.scheduledActivities[0]
		b.scheduledActivities = b.scheduledActivities[1:]
		if sa.expiration.Before(now) {
			continue
		}

		at := b.activities[sa.execution.Activity]
		execTimeout := at.ExecutionTimeout
		if execTimeout <= 0 {
			execTimeout = engine.Defaults.ActivityExecutionTimeout
		}
		heartbeatTimeout := at.HeartbeatTimeout
		if heartbeatTimeout <= 0 {
			heartbeatTimeout = engine.Defaults.ActivityHeartbeatTimeout
		}

		runID := uuid.New()
		b.runningActivities[runID] = &runningActivity{
			execution:           sa.execution,
			process:             sa.process,
			expiration:          now.Add(execTimeout),
			heartbeatExpiration: now.Add(heartbeatTimeout),
			manualComplete:      at.ManualComplete,
		}
		return sa.process, sa.execution, engine.TaskContext{RunID: runID}, true
	}
	return nil, engine.ActivityExecution{}, engine.TaskContext{}, false
}

// Heartbeat renews the heartbeat deadline of a dispatched activity task.
// Returns false (a *engine.TimedOutError at the caller) if the run-id is
// no longer running — it may already have been reclaimed by a sweep.
func (b *Broker) Heartbeat(runID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.timeOutActivitiesLocked(now)

	ra, ok := b.runningActivities[runID]
	if !ok {
		return false
	}

	at := b.activities[ra.execution.Activity]
	timeout := at.HeartbeatTimeout
	if timeout <= 0 {
		timeout = engine.Defaults.ActivityHeartbeatTimeout
	}
	ra.heartbeatExpiration = now.Add(timeout)
	return true
}

// CompleteDecision applies decisions to the running decision task's
// process, scheduling any activity/timer/child-process decisions and
// handling process termination, mirroring complete_decision_task. The
// second return value carries any processes newly created by a
// StartChildProcess decision (spec.md section 4.2: "create child with
// parent = this.id; schedule its initial decision"). The caller owns the
// process store, so it is responsible for persisting them. Returns false
// (a *engine.TimedOutError at the caller) if runID is no longer running.
func (b *Broker) CompleteDecision(runID string, decisions []engine.Decision) (*engine.Process, []*engine.Process, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.timeOutDecisionsLocked(now)

	rd, ok := b.runningDecisions[runID]
	if !ok {
		return nil, nil, false
	}
	delete(b.runningDecisions, runID)

	process := rd.process
	var children []*engine.Process
	for _, d := range decisions {
		process.History = append(process.History, engine.NewDecisionEvent(now, d))

		switch d.Kind {
		case engine.DecisionScheduleActivity:
			sa := d.ScheduleActivity
			at := b.activities[sa.Activity]
			category := sa.Category
			if category == "" {
				category = at.Category
			}
			if category == "" {
				category = engine.Defaults.DefaultCategory
			}
			execution := engine.ActivityExecution{Activity: sa.Activity, ID: sa.ID, Input: sa.Input}
			b.scheduleActivityLocked(process, category, execution)
		case engine.DecisionCancelActivity:
			b.cancelActivityLocked(process.ID, d.CancelActivity.ID)
		case engine.DecisionTimer:
			// Timer decisions fire asynchronously; a backend with a real
			// clock schedules the deferred NewTimerEvent. The broker itself
			// only records the decision here; backend/memory's timer
			// goroutine calls FireTimer below once Delay elapses.
		case engine.DecisionCompleteProcess, engine.DecisionCancelProcess:
			b.cancelDecisionLocked(process.ID)
		case engine.DecisionStartChildProcess:
			child := d.StartChildProcess.Process
			if child.ID == "" {
				child.ID = uuid.New()
			}
			child.ParentID = process.ID
			child.History = append(child.History, engine.NewProcessStartedEvent(now))
			b.scheduleDecisionLocked(&child)
			children = append(children, &child)
		}
	}
	return process, children, true
}

// FireTimer appends the Timer event once a Timer decision's delay has
// elapsed and schedules a follow-up decision.
func (b *Broker) FireTimer(process *engine.Process, timer engine.Decision) {
	b.mu.Lock()
	defer b.mu.Unlock()
	process.History = append(process.History, engine.NewTimerEvent(b.now(), timer))
	b.scheduleDecisionLocked(process)
}

// CompleteActivity records a dispatched activity's outcome and schedules a
// follow-up decision, mirroring complete_activity_task. Returns false (a
// *engine.TimedOutError at the caller) if runID is no longer running.
func (b *Broker) CompleteActivity(runID string, outcome engine.Outcome) (*engine.Process, engine.ActivityExecution, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.timeOutActivitiesLocked(now)

	ra, ok := b.runningActivities[runID]
	if !ok {
		return nil, engine.ActivityExecution{}, false
	}
	delete(b.runningActivities, runID)

	ra.process.History = append(ra.process.History, engine.NewActivityEvent(now, ra.execution, outcome))
	b.scheduleDecisionLocked(ra.process)
	return ra.process, ra.execution, true
}

// Gauges reports the current size of all four structures, used by
// backend/memory to publish the ScheduledDecisionsGauge family
// (SPEC_FULL.md DOMAIN STACK, metrics).
func (b *Broker) Gauges() (scheduledDecisions, runningDecisions, scheduledActivities, runningActivities int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.scheduledDecisions), len(b.runningDecisions), len(b.scheduledActivities), len(b.runningActivities)
}
