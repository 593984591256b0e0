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

package memory

import (
	"context"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/uber/workflow-engine/engine"
)

type BackendSuite struct {
	*require.Assertions
	suite.Suite

	ctx     context.Context
	backend *Backend
}

func TestBackendSuite(t *testing.T) {
	suite.Run(t, new(BackendSuite))
}

func (s *BackendSuite) SetupTest() {
	s.Assertions = require.New(s.T())
	s.ctx = context.Background()
	s.backend = New(engine.NewConfig())
	s.Require().NoError(s.backend.RegisterWorkflow("greet", engine.WorkflowType{}))
	s.Require().NoError(s.backend.RegisterActivity("sayHello", engine.ActivityType{}))
}

func (s *BackendSuite) TestStartProcessRejectsUnregisteredWorkflow() {
	err := s.backend.StartProcess(s.ctx, &engine.Process{Workflow: "nope"})
	s.Error(err)
	s.IsType(&engine.InvalidInputError{}, err)
}

func (s *BackendSuite) TestStartProcessAssignsID() {
	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(s.backend.StartProcess(s.ctx, p))
	s.NotEmpty(p.ID)

	stored, err := s.backend.ProcessByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.True(stored.IsRunning())
	s.Len(stored.History, 1)
	s.Equal(engine.EventProcessStarted, stored.History[0].Kind)
}

func (s *BackendSuite) TestProcessByIDUnknownReturnsNotFound() {
	_, err := s.backend.ProcessByID(s.ctx, "no-such-id")
	s.True(engine.IsNotFound(err))
}

func (s *BackendSuite) TestFullDecisionActivityRoundTrip() {
	p := &engine.Process{Workflow: "greet", Tags: []string{"team:eng"}}
	s.Require().NoError(s.backend.StartProcess(s.ctx, p))

	task, err := s.backend.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(task)
	s.Equal(p.ID, task.Process.ID)

	scheduleActivity := engine.NewScheduleActivityDecision("sayHello", "a1", []byte("world"), "")
	s.Require().NoError(s.backend.CompleteDecisionTask(s.ctx, *task, []engine.Decision{scheduleActivity}))

	actTask, err := s.backend.PollActivityTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(actTask)
	s.Equal("sayHello", actTask.Execution.Activity)
	s.Equal("a1", actTask.Execution.ID)

	s.Require().NoError(s.backend.HeartbeatActivity(s.ctx, *actTask))
	s.Require().NoError(s.backend.CompleteActivityTask(s.ctx, *actTask, engine.Completed([]byte("hello world"))))

	decisionTask2, err := s.backend.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(decisionTask2)

	unseen := decisionTask2.Process.UnseenEvents()
	s.Require().Len(unseen, 2, "activity-started and activity-completed events since the last decision:\n%s", spew.Sdump(unseen))
	s.Equal(engine.EventActivity, unseen[1].Kind)
	s.Equal(engine.OutcomeCompleted, unseen[1].Activity.Outcome.Kind)

	complete := engine.NewCompleteProcessDecision([]byte("done"))
	s.Require().NoError(s.backend.CompleteDecisionTask(s.ctx, *decisionTask2, []engine.Decision{complete}))

	_, err = s.backend.ProcessByID(s.ctx, p.ID)
	s.True(engine.IsNotFound(err), "a completed process is removed from the running set")
}

// TestStartChildProcessNotifiesParentOnCompletion drives spec.md's Scenario
// E: the parent submits StartChildProcess, the child runs to completion,
// and the parent's next decision task observes a ChildProcess event.
func (s *BackendSuite) TestStartChildProcessNotifiesParentOnCompletion() {
	s.Require().NoError(s.backend.RegisterWorkflow("child", engine.WorkflowType{}))

	parent := &engine.Process{Workflow: "greet"}
	s.Require().NoError(s.backend.StartProcess(s.ctx, parent))

	parentTask, err := s.backend.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)

	startChild := engine.NewStartChildProcessDecision(engine.Process{Workflow: "child", Tags: []string{"team:eng"}})
	s.Require().NoError(s.backend.CompleteDecisionTask(s.ctx, *parentTask, []engine.Decision{startChild}))

	childTask, err := s.backend.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(childTask)
	s.Equal(parent.ID, childTask.Process.ParentID)

	complete := engine.NewCompleteProcessDecision([]byte("50"))
	s.Require().NoError(s.backend.CompleteDecisionTask(s.ctx, *childTask, []engine.Decision{complete}))

	_, err = s.backend.ProcessByID(s.ctx, childTask.Process.ID)
	s.True(engine.IsNotFound(err), "the completed child must be removed from the running set")

	parentTask2, err := s.backend.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(parentTask2, "completing the child must schedule a follow-up decision on the parent")

	unseen := parentTask2.Process.UnseenEvents()
	s.Require().Len(unseen, 1)
	s.Equal(engine.EventChildProcess, unseen[0].Kind)
	s.Equal(childTask.Process.ID, unseen[0].ChildProcess.ProcessID)
	s.Equal("child", unseen[0].ChildProcess.Workflow)
	s.Equal(engine.OutcomeCompleted, unseen[0].ChildProcess.Outcome.Kind)
	s.Equal([]byte("50"), unseen[0].ChildProcess.Outcome.Result)
}

func (s *BackendSuite) TestCancelProcessNotifiesParent() {
	s.Require().NoError(s.backend.RegisterWorkflow("child", engine.WorkflowType{}))

	parent := &engine.Process{Workflow: "greet"}
	s.Require().NoError(s.backend.StartProcess(s.ctx, parent))
	parentTask, err := s.backend.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)

	startChild := engine.NewStartChildProcessDecision(engine.Process{Workflow: "child"})
	s.Require().NoError(s.backend.CompleteDecisionTask(s.ctx, *parentTask, []engine.Decision{startChild}))

	childTask, err := s.backend.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(childTask)

	s.Require().NoError(s.backend.CancelProcess(s.ctx, childTask.Process.ID, []byte("cleanup"), "operator request"))

	parentTask2, err := s.backend.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(parentTask2)
	unseen := parentTask2.Process.UnseenEvents()
	s.Require().Len(unseen, 1)
	s.Equal(engine.EventChildProcess, unseen[0].Kind)
	s.Equal(engine.OutcomeCanceled, unseen[0].ChildProcess.Outcome.Kind)
	s.Equal([]byte("cleanup"), unseen[0].ChildProcess.Outcome.Details)
}

func (s *BackendSuite) TestSignalProcessSchedulesDecision() {
	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(s.backend.StartProcess(s.ctx, p))
	first, err := s.backend.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(first)
	scheduleActivity := engine.NewScheduleActivityDecision("sayHello", "a1", nil, "")
	s.Require().NoError(s.backend.CompleteDecisionTask(s.ctx, *first, []engine.Decision{scheduleActivity}))

	s.Require().NoError(s.backend.SignalProcess(s.ctx, p.ID, "proceed", []byte("go")))

	task, err := s.backend.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(task)

	unseen := task.Process.UnseenEvents()
	s.Require().Len(unseen, 1)
	s.Equal(engine.EventSignal, unseen[0].Kind)
	s.Equal("proceed", unseen[0].Signal.Name)
}

func (s *BackendSuite) TestCancelProcessRemovesItFromRunningSet() {
	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(s.backend.StartProcess(s.ctx, p))

	s.Require().NoError(s.backend.CancelProcess(s.ctx, p.ID, []byte("cleanup"), "operator request"))

	_, err := s.backend.ProcessByID(s.ctx, p.ID)
	s.True(engine.IsNotFound(err))
}

func (s *BackendSuite) TestListProcessesFiltersByWorkflowAndTag() {
	a := &engine.Process{Workflow: "greet", Tags: []string{"team:eng"}}
	b := &engine.Process{Workflow: "greet", Tags: []string{"team:sales"}}
	s.Require().NoError(s.backend.StartProcess(s.ctx, a))
	s.Require().NoError(s.backend.StartProcess(s.ctx, b))

	it, err := s.backend.ListProcesses(s.ctx, engine.ListProcessesRequest{Tag: "team:eng"})
	s.Require().NoError(err)
	all, err := engine.Collect(it)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(a.ID, all[0].ID)
}

func (s *BackendSuite) TestPollDecisionTaskReturnsNilWhenEmpty() {
	task, err := s.backend.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Nil(task)
}

func (s *BackendSuite) TestHeartbeatActivityUnknownRunIDTimesOut() {
	err := s.backend.HeartbeatActivity(s.ctx, engine.ActivityTask{Context: engine.TaskContext{RunID: "no-such-run"}})
	s.True(engine.IsTimedOut(err))
}
