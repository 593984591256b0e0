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

package swf

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/swf"

	"github.com/uber/workflow-engine/engine"
)

// buildHistory translates SWF's flat event list into engine events. Its
// scheduled map keeps the activity/input pair each
// ActivityTaskScheduledEventAttributes carries, keyed by SWF's numeric
// scheduledEventId: the scheduled event itself becomes an ActivityStarted
// event, and a later Completed/Failed/TimedOut/Canceled event (which only
// references the scheduling event id) is paired back with that execution
// into one engine.ActivityEvent (process.py's from_description does the
// same two-pass join over SWF's flat event list).
func buildHistory(events []*swf.HistoryEvent) []engine.Event {
	scheduled := make(map[int64]engine.ActivityExecution)
	out := make([]engine.Event, 0, len(events))

	for _, e := range events {
		ts := time.Now()
		if e.EventTimestamp != nil {
			ts = *e.EventTimestamp
		}

		switch aws.StringValue(e.EventType) {
		case swf.EventTypeWorkflowExecutionStarted:
			out = append(out, engine.NewProcessStartedEvent(ts))

		case swf.EventTypeDecisionTaskStarted:
			out = append(out, engine.NewDecisionStartedEvent(ts))

		case swf.EventTypeActivityTaskScheduled:
			a := e.ActivityTaskScheduledEventAttributes
			execution := engine.ActivityExecution{
				Activity: aws.StringValue(a.ActivityType.Name),
				ID:       aws.StringValue(a.ActivityId),
				Input:    []byte(aws.StringValue(a.Input)),
			}
			scheduled[aws.Int64Value(e.EventId)] = execution
			out = append(out, engine.NewActivityStartedEvent(ts, execution))

		case swf.EventTypeActivityTaskCompleted:
			a := e.ActivityTaskCompletedEventAttributes
			execution := scheduled[aws.Int64Value(a.ScheduledEventId)]
			out = append(out, engine.NewActivityEvent(ts, execution, engine.Completed([]byte(aws.StringValue(a.Result)))))

		case swf.EventTypeActivityTaskFailed:
			a := e.ActivityTaskFailedEventAttributes
			execution := scheduled[aws.Int64Value(a.ScheduledEventId)]
			out = append(out, engine.NewActivityEvent(ts, execution, engine.Failed(aws.StringValue(a.Reason), []byte(aws.StringValue(a.Details)))))

		case swf.EventTypeActivityTaskTimedOut:
			a := e.ActivityTaskTimedOutEventAttributes
			execution := scheduled[aws.Int64Value(a.ScheduledEventId)]
			out = append(out, engine.NewActivityEvent(ts, execution, engine.TimedOut([]byte(aws.StringValue(a.Details)))))

		case swf.EventTypeActivityTaskCanceled:
			a := e.ActivityTaskCanceledEventAttributes
			execution := scheduled[aws.Int64Value(a.ScheduledEventId)]
			out = append(out, engine.NewActivityEvent(ts, execution, engine.Canceled([]byte(aws.StringValue(a.Details)))))

		case swf.EventTypeWorkflowExecutionSignaled:
			a := e.WorkflowExecutionSignaledEventAttributes
			out = append(out, engine.NewSignalEvent(ts, aws.StringValue(a.SignalName), []byte(aws.StringValue(a.Input))))

		case swf.EventTypeTimerFired:
			out = append(out, engine.NewTimerEvent(ts, engine.NewTimerDecision(0, nil)))

		case swf.EventTypeChildWorkflowExecutionCompleted:
			a := e.ChildWorkflowExecutionCompletedEventAttributes
			out = append(out, engine.NewChildProcessEvent(ts, aws.StringValue(a.WorkflowExecution.WorkflowId), aws.StringValue(a.WorkflowType.Name), nil, engine.Completed([]byte(aws.StringValue(a.Result)))))

		case swf.EventTypeChildWorkflowExecutionFailed:
			a := e.ChildWorkflowExecutionFailedEventAttributes
			out = append(out, engine.NewChildProcessEvent(ts, aws.StringValue(a.WorkflowExecution.WorkflowId), aws.StringValue(a.WorkflowType.Name), nil, engine.Failed(aws.StringValue(a.Reason), []byte(aws.StringValue(a.Details)))))

		case swf.EventTypeChildWorkflowExecutionTerminated:
			a := e.ChildWorkflowExecutionTerminatedEventAttributes
			out = append(out, engine.NewChildProcessEvent(ts, aws.StringValue(a.WorkflowExecution.WorkflowId), aws.StringValue(a.WorkflowType.Name), nil, engine.Canceled(nil)))

		case swf.EventTypeChildWorkflowExecutionTimedOut:
			a := e.ChildWorkflowExecutionTimedOutEventAttributes
			out = append(out, engine.NewChildProcessEvent(ts, aws.StringValue(a.WorkflowExecution.WorkflowId), aws.StringValue(a.WorkflowType.Name), nil, engine.TimedOut(nil)))
		}
	}
	return out
}

// processFromDescription builds an engine.Process from a workflow
// execution's open-execution description plus its full event history,
// fetched separately since SWF paginates history independent of the
// execution listing (__init__.py's processes(), get_history/mk_process).
func processFromDescription(info *swf.WorkflowExecutionInfo, events []*swf.HistoryEvent) *engine.Process {
	return &engine.Process{
		ID:       aws.StringValue(info.Execution.WorkflowId),
		Workflow: aws.StringValue(info.WorkflowType.Name),
		Tags:     aws.StringValueSlice(info.TagList),
		History:  buildHistory(events),
	}
}
