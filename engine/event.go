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

// EventKind tags which of Event's kind-specific fields is populated.
type EventKind string

// Event kinds named in spec.md section 3.
const (
	EventProcessStarted  EventKind = "ProcessStarted"
	EventDecisionStarted EventKind = "DecisionStarted"
	EventDecision        EventKind = "Decision"
	EventActivityStarted EventKind = "ActivityStarted"
	EventActivity        EventKind = "Activity"
	EventSignal          EventKind = "Signal"
	EventTimer           EventKind = "Timer"
	EventChildProcess    EventKind = "ChildProcess"
)

// OutcomeKind tags how an activity execution, or a child process, ended.
type OutcomeKind string

// Outcome kinds shared by activity results and child-process results
// (spec.md section 3: "result ∈ {Completed, Canceled, Failed, TimedOut}").
const (
	OutcomeCompleted OutcomeKind = "Completed"
	OutcomeCanceled  OutcomeKind = "Canceled"
	OutcomeFailed    OutcomeKind = "Failed"
	OutcomeTimedOut  OutcomeKind = "TimedOut"
)

// Outcome is the terminal result of an activity execution or a child
// process, carrying whichever of Result/Details/Reason applies to Kind.
type Outcome struct {
	Kind    OutcomeKind
	Result  []byte // Completed
	Details []byte // Canceled, TimedOut
	Reason  string // Failed
}

// Completed builds a Completed outcome.
func Completed(result []byte) Outcome { return Outcome{Kind: OutcomeCompleted, Result: result} }

// Canceled builds a Canceled outcome.
func Canceled(details []byte) Outcome { return Outcome{Kind: OutcomeCanceled, Details: details} }

// Failed builds a Failed outcome.
func Failed(reason string, details []byte) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: reason, Details: details}
}

// TimedOut builds a TimedOut outcome.
func TimedOut(details []byte) Outcome { return Outcome{Kind: OutcomeTimedOut, Details: details} }

// ActivityExecution identifies one concrete instance of an activity being
// scheduled/run: the type name, its caller-chosen id (unique within the
// owning process), and its opaque input payload.
type ActivityExecution struct {
	Activity string
	ID       string
	Input    []byte
}

// SignalData is the payload of a Signal event.
type SignalData struct {
	Name string
	Data []byte
}

// ActivityEvent pairs a previously-scheduled execution with its outcome.
type ActivityEvent struct {
	Execution ActivityExecution
	Outcome   Outcome
}

// ChildProcessEvent records a child process reaching a terminal state,
// appended to the parent's history.
type ChildProcessEvent struct {
	ProcessID string
	Workflow  string
	Tags      []string
	Outcome   Outcome
}

// Event is one entry of a process's append-only history.
type Event struct {
	Kind      EventKind
	Timestamp time.Time

	Decision     *Decision          // EventDecision
	Activity     *ActivityEvent     // EventActivityStarted (Execution only), EventActivity
	Signal       *SignalData        // EventSignal
	Timer        *Decision          // EventTimer: the Timer decision that fired
	ChildProcess *ChildProcessEvent // EventChildProcess
}

func newEvent(now time.Time, kind EventKind) Event {
	return Event{Kind: kind, Timestamp: now}
}

// NewProcessStartedEvent builds the implicit first event of every process.
func NewProcessStartedEvent(now time.Time) Event {
	return newEvent(now, EventProcessStarted)
}

// NewDecisionStartedEvent marks a decision task being dispatched.
func NewDecisionStartedEvent(now time.Time) Event {
	return newEvent(now, EventDecisionStarted)
}

// NewDecisionEvent records one decision submitted by a decider.
func NewDecisionEvent(now time.Time, d Decision) Event {
	e := newEvent(now, EventDecision)
	e.Decision = &d
	return e
}

// NewActivityStartedEvent marks an activity task being dispatched.
func NewActivityStartedEvent(now time.Time, execution ActivityExecution) Event {
	e := newEvent(now, EventActivityStarted)
	e.Activity = &ActivityEvent{Execution: execution}
	return e
}

// NewActivityEvent records an activity execution's outcome.
func NewActivityEvent(now time.Time, execution ActivityExecution, outcome Outcome) Event {
	e := newEvent(now, EventActivity)
	e.Activity = &ActivityEvent{Execution: execution, Outcome: outcome}
	return e
}

// NewSignalEvent records an out-of-band signal delivered to a process.
func NewSignalEvent(now time.Time, name string, data []byte) Event {
	e := newEvent(now, EventSignal)
	e.Signal = &SignalData{Name: name, Data: data}
	return e
}

// NewTimerEvent records a scheduled timer firing.
func NewTimerEvent(now time.Time, d Decision) Event {
	e := newEvent(now, EventTimer)
	e.Timer = &d
	return e
}

// NewChildProcessEvent records a child process reaching a terminal state.
func NewChildProcessEvent(now time.Time, processID, workflow string, tags []string, outcome Outcome) Event {
	e := newEvent(now, EventChildProcess)
	e.ChildProcess = &ChildProcessEvent{ProcessID: processID, Workflow: workflow, Tags: tags, Outcome: outcome}
	return e
}
