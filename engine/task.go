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

package engine

import "time"

// WorkflowType is the registration record for a workflow name (spec.md
// section 3).
type WorkflowType struct {
	Timeout         time.Duration
	DecisionTimeout time.Duration
	Category        string

	// Version is the workflow definition's semantic version. Re-registering
	// the same name with a lower version than the one already on file is
	// rejected (SPEC_FULL.md section 2.1, "workflow/activity type version
	// compatibility checks"); empty is treated as "0.0.0".
	Version string
}

// ActivityType is the registration record for an activity name (spec.md
// section 3), plus the ManualComplete flag supplemented from
// original_source/pyworkflow/managed/activity.py (human-in-the-loop steps
// whose result is submitted out of band, see SPEC_FULL.md section 3.1).
type ActivityType struct {
	Category         string
	ScheduledTimeout time.Duration
	ExecutionTimeout time.Duration
	HeartbeatTimeout time.Duration
	ManualComplete   bool

	// Version is the activity definition's semantic version, checked the
	// same way as WorkflowType.Version.
	Version string
}

// TaskContext carries the backend-opaque run-id correlating a dispatched
// task with its eventual completion call.
type TaskContext struct {
	RunID string
}

// DecisionTask is dispatched to a decider by PollDecisionTask.
type DecisionTask struct {
	Process Process
	Context TaskContext
}

// ActivityTask is dispatched to an activity worker by PollActivityTask.
type ActivityTask struct {
	Execution ActivityExecution
	ProcessID string
	Context   TaskContext
}

// PollRequest parameterizes PollDecisionTask/PollActivityTask.
type PollRequest struct {
	Category string
	Identity string
}

// ListProcessesRequest filters ListProcesses.
type ListProcessesRequest struct {
	Workflow string // empty matches any
	Tag      string // empty matches any
}
