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

// Package decider implements the decider contract (spec.md section 4.3):
// given a process's unseen events, produce the decisions that react to
// them. The event-dispatch shape is grounded on
// original_source/pyworkflow/managed/workflow/default.py
// (DefaultWorkflow.handle_event/decide); the rule-matching helpers in
// rules.go are grounded on
// original_source/pyworkflow/managed/workflow/rules.py.
package decider

import "github.com/uber/workflow-engine/engine"

// Decider reacts to a process's unseen events and returns the decisions
// that should be applied. Implementations must be safe to call
// concurrently for different processes; a single process's decision tasks
// are already serialized by the broker (spec.md section 3, invariant 3).
type Decider interface {
	Decide(process *engine.Process) ([]engine.Decision, error)
}

// DeciderFunc adapts a plain function to the Decider interface.
type DeciderFunc func(process *engine.Process) ([]engine.Decision, error)

// Decide implements Decider.
func (f DeciderFunc) Decide(process *engine.Process) ([]engine.Decision, error) {
	return f(process)
}

// EventHandlers groups one callback per event kind a Workflow may want to
// react to, mirroring DefaultWorkflow's respond_to_* methods. A nil
// callback means "ignore this kind of event" rather than an error.
type EventHandlers struct {
	OnProcessStarted func(process *engine.Process) []engine.Decision
	OnActivityCompleted func(process *engine.Process, execution engine.ActivityExecution, result []byte) []engine.Decision
	OnActivityInterrupted func(process *engine.Process, execution engine.ActivityExecution, outcome engine.Outcome) []engine.Decision
	OnSignal func(process *engine.Process, signal engine.SignalData) []engine.Decision
	OnTimer func(process *engine.Process, timer engine.Decision) []engine.Decision
	OnChildProcessCompleted func(process *engine.Process, child engine.ChildProcessEvent) []engine.Decision
}

// Workflow builds a Decider out of a fixed set of event handlers, the
// idiomatic replacement for subclassing DefaultWorkflow: every workflow in
// this module is one EventHandlers value rather than a class hierarchy
// (spec.md section 9, "avoid class-hierarchy dispatch").
func Workflow(handlers EventHandlers) Decider {
	return DeciderFunc(func(process *engine.Process) ([]engine.Decision, error) {
		var decisions []engine.Decision
		for _, event := range process.UnseenEvents() {
			decisions = append(decisions, handlers.handle(process, event)...)
		}
		return Normalize(decisions), nil
	})
}

func (h EventHandlers) handle(process *engine.Process, event engine.Event) []engine.Decision {
	switch event.Kind {
	case engine.EventProcessStarted:
		if h.OnProcessStarted != nil {
			return h.OnProcessStarted(process)
		}
	case engine.EventActivity:
		if event.Activity == nil {
			return nil
		}
		if event.Activity.Outcome.Kind == engine.OutcomeCompleted {
			if h.OnActivityCompleted != nil {
				return h.OnActivityCompleted(process, event.Activity.Execution, event.Activity.Outcome.Result)
			}
		} else if h.OnActivityInterrupted != nil {
			return h.OnActivityInterrupted(process, event.Activity.Execution, event.Activity.Outcome)
		}
	case engine.EventSignal:
		if event.Signal != nil && h.OnSignal != nil {
			return h.OnSignal(process, *event.Signal)
		}
	case engine.EventTimer:
		if event.Timer != nil && h.OnTimer != nil {
			return h.OnTimer(process, *event.Timer)
		}
	case engine.EventChildProcess:
		if event.ChildProcess != nil && h.OnChildProcessCompleted != nil {
			return h.OnChildProcessCompleted(process, *event.ChildProcess)
		}
	}
	return nil
}

// Normalize flattens and de-duplicates a decider's output, the Go
// replacement for DefaultWorkflow.decide's `unique(flatten(decisions))`
// over Python's dynamically-typed decision/activity-class return values.
// Because engine.Decision is a plain comparable-by-value struct once its
// pointer fields are dereferenced for comparison, de-duplication here
// compares each decision's rendered key instead of the struct itself.
func Normalize(decisions []engine.Decision) []engine.Decision {
	seen := make(map[string]bool, len(decisions))
	out := make([]engine.Decision, 0, len(decisions))
	for _, d := range decisions {
		key := decisionKey(d)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

func decisionKey(d engine.Decision) string {
	switch d.Kind {
	case engine.DecisionScheduleActivity:
		if d.ScheduleActivity != nil {
			return string(d.Kind) + ":" + d.ScheduleActivity.Activity + ":" + d.ScheduleActivity.ID
		}
	case engine.DecisionCancelActivity:
		if d.CancelActivity != nil {
			return string(d.Kind) + ":" + d.CancelActivity.ID
		}
	case engine.DecisionStartChildProcess:
		if d.StartChildProcess != nil {
			return string(d.Kind) + ":" + d.StartChildProcess.Process.ID
		}
	}
	return string(d.Kind)
}
