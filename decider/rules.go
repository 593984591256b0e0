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

package decider

import "github.com/uber/workflow-engine/engine"

// Rule is a single match/handle pair, the Go counterpart of
// original_source/pyworkflow/managed/workflow/rules.py's Rule +
// @rule-decorated matchers. A RuleSet evaluates rules in order and applies
// every one whose Match returns true, instead of Python's decorator-based
// single-dispatch-per-method style.
type Rule struct {
	Match  func(event engine.Event) bool
	Handle func(process *engine.Process, event engine.Event) []engine.Decision
}

// RuleSet is a Decider built from an ordered list of Rules: every Rule
// whose Match accepts an unseen event contributes its Handle output.
type RuleSet []Rule

// Decide implements Decider.
func (rs RuleSet) Decide(process *engine.Process) ([]engine.Decision, error) {
	var decisions []engine.Decision
	for _, event := range process.UnseenEvents() {
		for _, r := range rs {
			if r.Match(event) {
				decisions = append(decisions, r.Handle(process, event)...)
			}
		}
	}
	return Normalize(decisions), nil
}

// OnProcessStarted matches the implicit first event of every process.
func OnProcessStarted(handle func(process *engine.Process) []engine.Decision) Rule {
	return Rule{
		Match: func(event engine.Event) bool { return event.Kind == engine.EventProcessStarted },
		Handle: func(process *engine.Process, _ engine.Event) []engine.Decision {
			return handle(process)
		},
	}
}

// OnActivityCompleted matches a successfully completed activity,
// optionally filtered by activity type name (empty matches any).
func OnActivityCompleted(activity string, handle func(process *engine.Process, execution engine.ActivityExecution, result []byte) []engine.Decision) Rule {
	return Rule{
		Match: func(event engine.Event) bool {
			if event.Kind != engine.EventActivity || event.Activity == nil {
				return false
			}
			if event.Activity.Outcome.Kind != engine.OutcomeCompleted {
				return false
			}
			return activity == "" || event.Activity.Execution.Activity == activity
		},
		Handle: func(process *engine.Process, event engine.Event) []engine.Decision {
			return handle(process, event.Activity.Execution, event.Activity.Outcome.Result)
		},
	}
}

// OnActivityInterrupted matches an activity that ended in anything other
// than Completed (Canceled, Failed, or TimedOut).
func OnActivityInterrupted(activity string, handle func(process *engine.Process, execution engine.ActivityExecution, outcome engine.Outcome) []engine.Decision) Rule {
	return Rule{
		Match: func(event engine.Event) bool {
			if event.Kind != engine.EventActivity || event.Activity == nil {
				return false
			}
			if event.Activity.Outcome.Kind == engine.OutcomeCompleted {
				return false
			}
			return activity == "" || event.Activity.Execution.Activity == activity
		},
		Handle: func(process *engine.Process, event engine.Event) []engine.Decision {
			return handle(process, event.Activity.Execution, event.Activity.Outcome)
		},
	}
}

// OnSignal matches a signal event, optionally filtered by name (empty
// matches any).
func OnSignal(name string, handle func(process *engine.Process, signal engine.SignalData) []engine.Decision) Rule {
	return Rule{
		Match: func(event engine.Event) bool {
			if event.Kind != engine.EventSignal || event.Signal == nil {
				return false
			}
			return name == "" || event.Signal.Name == name
		},
		Handle: func(process *engine.Process, event engine.Event) []engine.Decision {
			return handle(process, *event.Signal)
		},
	}
}

// OnTimer matches a fired timer event.
func OnTimer(handle func(process *engine.Process, timer engine.Decision) []engine.Decision) Rule {
	return Rule{
		Match: func(event engine.Event) bool { return event.Kind == engine.EventTimer && event.Timer != nil },
		Handle: func(process *engine.Process, event engine.Event) []engine.Decision {
			return handle(process, *event.Timer)
		},
	}
}

// OnChildProcessCompleted matches a terminal child-process event,
// optionally filtered by workflow name and/or a required tag.
func OnChildProcessCompleted(workflow, hasTag string, handle func(process *engine.Process, child engine.ChildProcessEvent) []engine.Decision) Rule {
	return Rule{
		Match: func(event engine.Event) bool {
			if event.Kind != engine.EventChildProcess || event.ChildProcess == nil {
				return false
			}
			if workflow != "" && event.ChildProcess.Workflow != workflow {
				return false
			}
			if hasTag != "" && !containsTag(event.ChildProcess.Tags, hasTag) {
				return false
			}
			return true
		},
		Handle: func(process *engine.Process, event engine.Event) []engine.Decision {
			return handle(process, *event.ChildProcess)
		},
	}
}

func containsTag(tags []string, t string) bool {
	for _, candidate := range tags {
		if candidate == t {
			return true
		}
	}
	return false
}
