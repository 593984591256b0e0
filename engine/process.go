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

// Process is a running (or terminated) workflow instance: identity,
// immutable definition, and its append-only history.
type Process struct {
	ID       string
	Workflow string
	Input    []byte
	Tags     []string
	ParentID string // empty when the process has no parent

	History []Event
}

// HasParent reports whether this process was started as a child process.
func (p *Process) HasParent() bool {
	return p.ParentID != ""
}

// IsRunning reports whether the process's history has not yet reached a
// terminal decision (spec.md section 3, invariant 4).
func (p *Process) IsRunning() bool {
	return terminalDecisionIndex(p.History) < 0
}

// terminalDecisionIndex returns the index of the CompleteProcess/CancelProcess
// Decision event, or -1 if the process has not terminated.
func terminalDecisionIndex(history []Event) int {
	for i, e := range history {
		if e.Kind != EventDecision || e.Decision == nil {
			continue
		}
		if e.Decision.Kind == DecisionCompleteProcess || e.Decision.Kind == DecisionCancelProcess {
			return i
		}
	}
	return -1
}

// UnseenEvents returns the events the decider has not yet reacted to: the
// suffix of history since the most recent Decision event, with
// DecisionStarted markers filtered out (spec.md section 4.3 and the
// Open-Question resolution in spec.md section 9 / DESIGN.md).
func (p *Process) UnseenEvents() []Event {
	lastDecision := -1
	for i, e := range p.History {
		if e.Kind == EventDecision {
			lastDecision = i
		}
	}

	suffix := p.History[lastDecision+1:]
	unseen := make([]Event, 0, len(suffix))
	for _, e := range suffix {
		if e.Kind == EventDecisionStarted {
			continue
		}
		unseen = append(unseen, e)
	}
	return unseen
}

// UnfinishedActivities returns the executions scheduled by a
// Decision(ScheduleActivity) event that have no terminal Activity event yet
// (spec.md section 4.5), in the order they were scheduled.
func (p *Process) UnfinishedActivities() []ActivityExecution {
	scheduled := make([]ActivityExecution, 0)
	finished := make(map[string]bool)

	for _, e := range p.History {
		switch {
		case e.Kind == EventDecision && e.Decision != nil && e.Decision.Kind == DecisionScheduleActivity:
			d := e.Decision.ScheduleActivity
			scheduled = append(scheduled, ActivityExecution{Activity: d.Activity, ID: d.ID, Input: d.Input})
		case e.Kind == EventActivity && e.Activity != nil:
			finished[e.Activity.Execution.ID] = true
		}
	}

	unfinished := make([]ActivityExecution, 0, len(scheduled))
	for _, execution := range scheduled {
		if !finished[execution.ID] {
			unfinished = append(unfinished, execution)
		}
	}
	return unfinished
}
