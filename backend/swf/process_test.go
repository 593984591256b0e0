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
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/swf"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/uber/workflow-engine/engine"
)

type ProcessSuite struct {
	*require.Assertions
	suite.Suite
}

func TestProcessSuite(t *testing.T) {
	suite.Run(t, new(ProcessSuite))
}

func (s *ProcessSuite) SetupTest() {
	s.Assertions = require.New(s.T())
}

func historyEvent(eventID int64, kind string) *swf.HistoryEvent {
	now := time.Unix(1700000000, 0)
	return &swf.HistoryEvent{
		EventId:        aws.Int64(eventID),
		EventType:      aws.String(kind),
		EventTimestamp: &now,
	}
}

func (s *ProcessSuite) TestBuildHistoryJoinsActivityScheduledAndCompleted() {
	scheduled := historyEvent(1, swf.EventTypeActivityTaskScheduled)
	scheduled.ActivityTaskScheduledEventAttributes = &swf.ActivityTaskScheduledEventAttributes{
		ActivityType: &swf.ActivityType{Name: aws.String("sayHello")},
		ActivityId:   aws.String("a1"),
		Input:        aws.String("world"),
	}
	completed := historyEvent(2, swf.EventTypeActivityTaskCompleted)
	completed.ActivityTaskCompletedEventAttributes = &swf.ActivityTaskCompletedEventAttributes{
		ScheduledEventId: aws.Int64(1),
		Result:           aws.String("hello world"),
	}

	out := buildHistory([]*swf.HistoryEvent{scheduled, completed})
	s.Require().Len(out, 2)

	s.Equal(engine.EventActivityStarted, out[0].Kind)
	s.Equal("sayHello", out[0].Activity.Execution.Activity)
	s.Equal("a1", out[0].Activity.Execution.ID)
	s.Equal([]byte("world"), out[0].Activity.Execution.Input)

	s.Equal(engine.EventActivity, out[1].Kind)
	s.Equal("sayHello", out[1].Activity.Execution.Activity, "the completed event must be joined back to the scheduling event's execution")
	s.Equal(engine.OutcomeCompleted, out[1].Activity.Outcome.Kind)
	s.Equal([]byte("hello world"), out[1].Activity.Outcome.Result)
}

func (s *ProcessSuite) TestBuildHistoryTranslatesSignal() {
	e := historyEvent(1, swf.EventTypeWorkflowExecutionSignaled)
	e.WorkflowExecutionSignaledEventAttributes = &swf.WorkflowExecutionSignaledEventAttributes{
		SignalName: aws.String("proceed"),
		Input:      aws.String("go"),
	}
	out := buildHistory([]*swf.HistoryEvent{e})
	s.Require().Len(out, 1)
	s.Equal(engine.EventSignal, out[0].Kind)
	s.Equal("proceed", out[0].Signal.Name)
	s.Equal([]byte("go"), out[0].Signal.Data)
}

func (s *ProcessSuite) TestBuildHistoryTranslatesChildProcessCompleted() {
	e := historyEvent(1, swf.EventTypeChildWorkflowExecutionCompleted)
	e.ChildWorkflowExecutionCompletedEventAttributes = &swf.ChildWorkflowExecutionCompletedEventAttributes{
		WorkflowExecution: &swf.WorkflowExecution{WorkflowId: aws.String("child-1")},
		WorkflowType:      &swf.WorkflowType{Name: aws.String("billing")},
		Result:            aws.String("done"),
	}
	out := buildHistory([]*swf.HistoryEvent{e})
	s.Require().Len(out, 1)
	s.Equal(engine.EventChildProcess, out[0].Kind)
	s.Equal("child-1", out[0].ChildProcess.ProcessID)
	s.Equal("billing", out[0].ChildProcess.Workflow)
	s.Equal(engine.OutcomeCompleted, out[0].ChildProcess.Outcome.Kind)
}

func (s *ProcessSuite) TestBuildHistorySkipsUnknownEventTypes() {
	out := buildHistory([]*swf.HistoryEvent{historyEvent(1, "SomeFutureSWFEventType")})
	s.Empty(out)
}

func (s *ProcessSuite) TestProcessFromDescription() {
	info := &swf.WorkflowExecutionInfo{
		Execution:    &swf.WorkflowExecution{WorkflowId: aws.String("p1")},
		WorkflowType: &swf.WorkflowType{Name: aws.String("greet")},
		TagList:      aws.StringSlice([]string{"team:eng"}),
	}
	p := processFromDescription(info, nil)
	s.Equal("p1", p.ID)
	s.Equal("greet", p.Workflow)
	s.Equal([]string{"team:eng"}, p.Tags)
	s.Empty(p.History)
}
