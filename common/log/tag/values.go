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

package tag

// Pre-defined values for EventKind, naming the append-only history event
// kinds from the data model so log lines and metrics scopes agree on one
// vocabulary.
const (
	EventKindProcessStarted  = "process-started"
	EventKindDecisionStarted = "decision-started"
	EventKindDecision        = "decision"
	EventKindActivityStarted = "activity-started"
	EventKindActivity        = "activity"
	EventKindSignal          = "signal"
	EventKindTimer           = "timer"
	EventKindChildProcess    = "child-process"
)

// Pre-defined values for DecisionKind.
const (
	DecisionKindScheduleActivity  = "schedule-activity"
	DecisionKindCancelActivity    = "cancel-activity"
	DecisionKindCompleteProcess   = "complete-process"
	DecisionKindCancelProcess     = "cancel-process"
	DecisionKindStartChildProcess = "start-child-process"
	DecisionKindTimer             = "timer"
)

// Pre-defined values for activity/child-process result kinds.
const (
	ResultKindCompleted = "completed"
	ResultKindCanceled  = "canceled"
	ResultKindFailed    = "failed"
	ResultKindTimedOut  = "timed-out"
)
