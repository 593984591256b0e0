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

// Package engine defines the abstract workflow-orchestration-engine
// contract (spec.md section 4.1 / section 6) and the data model it
// operates over (spec.md section 3). Every backend — backend/memory,
// backend/sql, backend/cassandra, backend/swf, backend/observer — implements
// Engine against these same types.
package engine

import "context"

// Engine is the abstract Backend interface spec.md section 6 requires
// every adapter to satisfy. All operations may return a *NotFoundError for
// an unknown process/activity/decision id, and Heartbeat/Complete* may
// additionally return a *TimedOutError when the referenced run-id has
// already been reclaimed by the expiration sweeper.
type Engine interface {
	// RegisterWorkflow registers a workflow type. Re-registering a name
	// with the same config has no observable effect (spec.md section 8,
	// round-trip property); engine/broker replaces the stored config when
	// it differs and rejects a lower Version.
	RegisterWorkflow(name string, config WorkflowType) error

	// RegisterActivity registers an activity type.
	RegisterActivity(name string, config ActivityType) error

	// StartProcess assigns an id if Process.ID is empty, persists the
	// process, and schedules its initial decision.
	StartProcess(ctx context.Context, process *Process) error

	// SignalProcess appends a Signal event and ensures a decision is
	// scheduled.
	SignalProcess(ctx context.Context, processID, name string, data []byte) error

	// CancelProcess appends a terminal CancelProcess decision, cancels any
	// pending decision, and removes the process from the running set.
	CancelProcess(ctx context.Context, processID string, details []byte, reason string) error

	// ListProcesses returns a lazy sequence of running processes matching
	// the given filter.
	ListProcesses(ctx context.Context, req ListProcessesRequest) (ProcessIterator, error)

	// ProcessByID returns the full process (including history) or a
	// *NotFoundError.
	ProcessByID(ctx context.Context, id string) (*Process, error)

	// PollDecisionTask dequeues the oldest eligible decision, blocking up
	// to an implementation-defined poll timeout before returning (nil, nil)
	// if nothing is available.
	PollDecisionTask(ctx context.Context, req PollRequest) (*DecisionTask, error)

	// PollActivityTask dequeues the oldest eligible activity, with the same
	// blocking-or-empty contract as PollDecisionTask.
	PollActivityTask(ctx context.Context, req PollRequest) (*ActivityTask, error)

	// HeartbeatActivity renews the heartbeat deadline for a dispatched
	// activity task.
	HeartbeatActivity(ctx context.Context, task ActivityTask) error

	// CompleteDecisionTask atomically applies the submitted decisions to
	// the task's process history.
	CompleteDecisionTask(ctx context.Context, task DecisionTask, decisions []Decision) error

	// CompleteActivityTask records the result of a dispatched activity and
	// schedules a follow-up decision.
	CompleteActivityTask(ctx context.Context, task ActivityTask, result Outcome) error
}
