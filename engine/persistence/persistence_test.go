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

package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/uber/workflow-engine/engine"
)

// fakeStore is a minimal in-memory Store, standing in for backend/sql and
// backend/cassandra so Backend's own logic can be tested without either.
type fakeStore struct {
	mu        sync.Mutex
	processes map[string]engine.Process
	closed    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{processes: make(map[string]engine.Process)}
}

func (f *fakeStore) SaveProcess(ctx context.Context, process *engine.Process) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processes[process.ID] = *process
	return nil
}

func (f *fakeStore) LoadProcess(ctx context.Context, id string) (*engine.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.processes[id]
	if !ok {
		return nil, engine.NewUnknownProcessError(id)
	}
	return &p, nil
}

func (f *fakeStore) DeleteProcess(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.processes, id)
	return nil
}

func (f *fakeStore) ListProcesses(ctx context.Context, req engine.ListProcessesRequest) ([]engine.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []engine.Process
	for _, p := range f.processes {
		if req.Workflow != "" && p.Workflow != req.Workflow {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

var _ Store = (*fakeStore)(nil)

type BackendSuite struct {
	*require.Assertions
	suite.Suite

	ctx   context.Context
	store *fakeStore
}

func TestPersistenceBackendSuite(t *testing.T) {
	suite.Run(t, new(BackendSuite))
}

func (s *BackendSuite) SetupTest() {
	s.Assertions = require.New(s.T())
	s.ctx = context.Background()
	s.store = newFakeStore()
}

func (s *BackendSuite) newBackend() *Backend {
	b, err := NewBackend(s.ctx, s.store, engine.NewConfig())
	s.Require().NoError(err)
	return b
}

func (s *BackendSuite) TestStartProcessAssignsIDAndPersists() {
	b := s.newBackend()
	s.Require().NoError(b.RegisterWorkflow("greet", engine.WorkflowType{}))

	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(b.StartProcess(s.ctx, p))
	s.NotEmpty(p.ID)

	stored, err := s.store.LoadProcess(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Len(stored.History, 1)
	s.Equal(engine.EventProcessStarted, stored.History[0].Kind)
}

func (s *BackendSuite) TestStartProcessRejectsUnregisteredWorkflow() {
	b := s.newBackend()
	err := b.StartProcess(s.ctx, &engine.Process{Workflow: "nope"})
	s.IsType(&engine.InvalidInputError{}, err)
}

func (s *BackendSuite) TestProcessByIDDelegatesToStore() {
	b := s.newBackend()
	s.Require().NoError(b.RegisterWorkflow("greet", engine.WorkflowType{}))
	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(b.StartProcess(s.ctx, p))

	got, err := b.ProcessByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)

	_, err = b.ProcessByID(s.ctx, "no-such-id")
	s.True(engine.IsNotFound(err))
}

func (s *BackendSuite) TestFullRoundTripDeletesOnCompletion() {
	b := s.newBackend()
	s.Require().NoError(b.RegisterWorkflow("greet", engine.WorkflowType{}))
	s.Require().NoError(b.RegisterActivity("sayHello", engine.ActivityType{}))

	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(b.StartProcess(s.ctx, p))

	task, err := b.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(task)

	schedule := engine.NewScheduleActivityDecision("sayHello", "a1", nil, "")
	s.Require().NoError(b.CompleteDecisionTask(s.ctx, *task, []engine.Decision{schedule}))

	actTask, err := b.PollActivityTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(actTask)

	s.Require().NoError(b.CompleteActivityTask(s.ctx, *actTask, engine.Completed([]byte("done"))))

	task2, err := b.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(task2)

	complete := engine.NewCompleteProcessDecision([]byte("done"))
	s.Require().NoError(b.CompleteDecisionTask(s.ctx, *task2, []engine.Decision{complete}))

	_, err = s.store.LoadProcess(s.ctx, p.ID)
	s.True(engine.IsNotFound(err), "a terminal decision must delete the process from Store")
}

// TestStartChildProcessNotifiesParentOnCompletion drives spec.md's child
// process scenario end to end: the parent submits StartChildProcess, the
// child is persisted with parent set and its own decision scheduled, and
// completing the child appends ChildProcess to the parent plus schedules
// the parent's next decision.
func (s *BackendSuite) TestStartChildProcessNotifiesParentOnCompletion() {
	b := s.newBackend()
	s.Require().NoError(b.RegisterWorkflow("parentWf", engine.WorkflowType{}))
	s.Require().NoError(b.RegisterWorkflow("childWf", engine.WorkflowType{}))

	parent := &engine.Process{Workflow: "parentWf"}
	s.Require().NoError(b.StartProcess(s.ctx, parent))

	parentTask, err := b.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)

	startChild := engine.NewStartChildProcessDecision(engine.Process{Workflow: "childWf", Tags: []string{"team:eng"}})
	s.Require().NoError(b.CompleteDecisionTask(s.ctx, *parentTask, []engine.Decision{startChild}))

	childTask, err := b.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(childTask, "the child's initial decision must be scheduled")
	s.Equal(parent.ID, childTask.Process.ParentID)

	complete := engine.NewCompleteProcessDecision([]byte("50"))
	s.Require().NoError(b.CompleteDecisionTask(s.ctx, *childTask, []engine.Decision{complete}))

	_, err = s.store.LoadProcess(s.ctx, childTask.Process.ID)
	s.True(engine.IsNotFound(err), "the completed child must be removed from Store")

	parentTask2, err := b.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(parentTask2, "completing the child must schedule a follow-up decision on the parent")

	unseen := parentTask2.Process.UnseenEvents()
	s.Require().Len(unseen, 1)
	s.Equal(engine.EventChildProcess, unseen[0].Kind)
	s.Equal(childTask.Process.ID, unseen[0].ChildProcess.ProcessID)
	s.Equal("childWf", unseen[0].ChildProcess.Workflow)
	s.Equal(engine.OutcomeCompleted, unseen[0].ChildProcess.Outcome.Kind)
	s.Equal([]byte("50"), unseen[0].ChildProcess.Outcome.Result)
}

func (s *BackendSuite) TestSignalProcessAppendsEventAndSchedulesDecision() {
	b := s.newBackend()
	s.Require().NoError(b.RegisterWorkflow("greet", engine.WorkflowType{}))
	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(b.StartProcess(s.ctx, p))
	first, err := b.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(first)
	schedule := engine.NewScheduleActivityDecision("sayHello", "a1", nil, "")
	s.Require().NoError(b.CompleteDecisionTask(s.ctx, *first, []engine.Decision{schedule}))

	s.Require().NoError(b.SignalProcess(s.ctx, p.ID, "proceed", []byte("go")))

	task, err := b.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(task)
	unseen := task.Process.UnseenEvents()
	s.Require().Len(unseen, 1)
	s.Equal(engine.EventSignal, unseen[0].Kind)
}

func (s *BackendSuite) TestCancelProcessAppendsEventAndCancelsPendingDecision() {
	b := s.newBackend()
	s.Require().NoError(b.RegisterWorkflow("greet", engine.WorkflowType{}))
	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(b.StartProcess(s.ctx, p))

	s.Require().NoError(b.CancelProcess(s.ctx, p.ID, []byte("cleanup"), "operator request"))

	stored, err := s.store.LoadProcess(s.ctx, p.ID)
	s.Require().NoError(err)
	last := stored.History[len(stored.History)-1]
	s.Equal(engine.EventDecision, last.Kind)
	s.Equal(engine.DecisionCancelProcess, last.Decision.Kind)

	_, _, ok := b.broker.PollDecision()
	s.False(ok, "canceling a process must cancel its pending decision so a stale poll never lands")
}

func (s *BackendSuite) TestListProcessesExcludesCompleted() {
	b := s.newBackend()
	s.Require().NoError(b.RegisterWorkflow("greet", engine.WorkflowType{}))
	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(b.StartProcess(s.ctx, p))
	p.History = append(p.History, engine.NewDecisionEvent(engine.RealClock.Now(), engine.NewCompleteProcessDecision(nil)))
	s.Require().NoError(s.store.SaveProcess(s.ctx, p))

	it, err := b.ListProcesses(s.ctx, engine.ListProcessesRequest{})
	s.Require().NoError(err)
	all, err := engine.Collect(it)
	s.Require().NoError(err)
	s.Empty(all, "a process whose history already ends in a terminal decision must not be listed as running")
}

func (s *BackendSuite) TestNewBackendRecoversRunningProcessesOnConstruction() {
	s.Require().NoError(s.store.SaveProcess(s.ctx, &engine.Process{
		ID:       "p1",
		Workflow: "greet",
		History:  []engine.Event{engine.NewProcessStartedEvent(engine.RealClock.Now())},
	}))

	b := s.newBackend()
	task, err := b.PollDecisionTask(s.ctx, engine.PollRequest{})
	s.Require().NoError(err)
	s.Require().NotNil(task, "a running process found at construction must have its decision task rescheduled")
	s.Equal("p1", task.Process.ID)
}

func (s *BackendSuite) TestHeartbeatActivityUnknownRunIDTimesOut() {
	b := s.newBackend()
	err := b.HeartbeatActivity(s.ctx, engine.ActivityTask{Context: engine.TaskContext{RunID: "no-such-run"}})
	s.True(engine.IsTimedOut(err))
}

func (s *BackendSuite) TestCloseClosesStore() {
	b := s.newBackend()
	s.Require().NoError(b.Close())
	s.True(s.store.closed)
}
