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

// DecisionKind tags which of the Decision union's fields is populated.
// Modeled as a tagged sum rather than an interface + type switch per
// spec.md section 9 ("avoid class-hierarchy dispatch").
type DecisionKind string

// Decision kinds named in spec.md section 3.
const (
	DecisionScheduleActivity  DecisionKind = "ScheduleActivity"
	DecisionCancelActivity    DecisionKind = "CancelActivity"
	DecisionCompleteProcess   DecisionKind = "CompleteProcess"
	DecisionCancelProcess     DecisionKind = "CancelProcess"
	DecisionStartChildProcess DecisionKind = "StartChildProcess"
	DecisionTimer             DecisionKind = "Timer"
)

// Decision is one instruction a decider returns from a decision task.
// Exactly one of the kind-specific fields is populated, selected by Kind.
type Decision struct {
	Kind DecisionKind

	ScheduleActivity  *ScheduleActivity
	CancelActivity    *CancelActivity
	CompleteProcess   *CompleteProcess
	CancelProcess     *CancelProcess
	StartChildProcess *StartChildProcess
	Timer             *Timer
}

// ScheduleActivity requests that an activity execution be scheduled.
// Category, if empty, falls back to the activity type's registered
// category.
type ScheduleActivity struct {
	Activity string
	ID       string
	Input    []byte
	Category string
}

// CancelActivity removes a scheduled/running activity execution by id.
type CancelActivity struct {
	ID string
}

// CompleteProcess is the terminal decision ending a process successfully.
type CompleteProcess struct {
	Result []byte
}

// CancelProcess is the terminal decision ending a process by cancellation.
type CancelProcess struct {
	Details []byte
	Reason  string
}

// StartChildProcess starts a new process whose parent is the process this
// decision was submitted for.
type StartChildProcess struct {
	Process Process
}

// Timer schedules a future decision to be delivered once Delay elapses.
type Timer struct {
	Delay time.Duration
	Data  []byte
}

// NewScheduleActivityDecision builds a ScheduleActivity decision.
func NewScheduleActivityDecision(activity, id string, input []byte, category string) Decision {
	return Decision{
		Kind:             DecisionScheduleActivity,
		ScheduleActivity: &ScheduleActivity{Activity: activity, ID: id, Input: input, Category: category},
	}
}

// NewCancelActivityDecision builds a CancelActivity decision.
func NewCancelActivityDecision(id string) Decision {
	return Decision{Kind: DecisionCancelActivity, CancelActivity: &CancelActivity{ID: id}}
}

// NewCompleteProcessDecision builds a CompleteProcess decision.
func NewCompleteProcessDecision(result []byte) Decision {
	return Decision{Kind: DecisionCompleteProcess, CompleteProcess: &CompleteProcess{Result: result}}
}

// NewCancelProcessDecision builds a CancelProcess decision.
func NewCancelProcessDecision(details []byte, reason string) Decision {
	return Decision{Kind: DecisionCancelProcess, CancelProcess: &CancelProcess{Details: details, Reason: reason}}
}

// NewStartChildProcessDecision builds a StartChildProcess decision.
func NewStartChildProcessDecision(child Process) Decision {
	return Decision{Kind: DecisionStartChildProcess, StartChildProcess: &StartChildProcess{Process: child}}
}

// NewTimerDecision builds a Timer decision.
func NewTimerDecision(delay time.Duration, data []byte) Decision {
	return Decision{Kind: DecisionTimer, Timer: &Timer{Delay: delay, Data: data}}
}
