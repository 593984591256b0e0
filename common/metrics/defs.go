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

// Package metrics holds the metric name/type definitions this module emits.
// This module should hold all the metric scope and name definitions for the
// engine, broker and workers.
package metrics

// types used/defined by the package
type (
	// MetricName is the name of the metric
	MetricName string

	// MetricType is the type of the metric
	MetricType int
)

// MetricTypes which are supported
const (
	Counter MetricType = iota
	Timer
	Gauge
)

// Scope is an index that uniquely identifies an operation scope for metric
// emission purposes.
type Scope int

// Scopes emitted by the engine, broker and workers.
const (
	StartProcessScope Scope = iota
	SignalProcessScope
	CancelProcessScope
	ListProcessesScope
	PollDecisionTaskScope
	PollActivityTaskScope
	HeartbeatActivityScope
	CompleteDecisionTaskScope
	CompleteActivityTaskScope
	SweepActivitiesScope
	SweepDecisionsScope
	DeciderRunScope
	ActivityRunScope
	NumScopes
)

var scopeNames = map[Scope]string{
	StartProcessScope:         "start_process",
	SignalProcessScope:        "signal_process",
	CancelProcessScope:        "cancel_process",
	ListProcessesScope:        "list_processes",
	PollDecisionTaskScope:     "poll_decision_task",
	PollActivityTaskScope:     "poll_activity_task",
	HeartbeatActivityScope:    "heartbeat_activity",
	CompleteDecisionTaskScope: "complete_decision_task",
	CompleteActivityTaskScope: "complete_activity_task",
	SweepActivitiesScope:      "sweep_activities",
	SweepDecisionsScope:       "sweep_decisions",
	DeciderRunScope:           "decider_run",
	ActivityRunScope:          "activity_run",
}

// String returns the scope's tally tag value.
func (s Scope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return "unknown"
}

// Metric names emitted within each scope above.
const (
	RequestCount      = "requests"
	RequestLatency    = "latency"
	ErrorCount        = "errors"
	UnknownErrorCount = "errors.unknown"
	TimedOutCount     = "errors.timed-out"

	ScheduledDecisionsGauge  = "queue.scheduled_decisions"
	RunningDecisionsGauge    = "queue.running_decisions"
	ScheduledActivitiesGauge = "queue.scheduled_activities"
	RunningActivitiesGauge   = "queue.running_activities"

	ActivityTimedOutCount = "activity.timed_out"
	DecisionRetriedCount  = "decision.retried"
)
