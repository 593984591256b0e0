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

package worker

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/uber/workflow-engine/activity"
	"github.com/uber/workflow-engine/backend/memory"
	"github.com/uber/workflow-engine/decider"
	"github.com/uber/workflow-engine/engine"
)

type WorkerSuite struct {
	*require.Assertions
	suite.Suite
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.Assertions = require.New(s.T())
}

// TestDrivesProcessToCompletion runs a one-activity workflow end to end
// against backend/memory: StartProcess -> decide -> execute activity ->
// decide again -> CompleteProcess.
func (s *WorkerSuite) TestDrivesProcessToCompletion() {
	eng := memory.New(engine.NewConfig())
	s.Require().NoError(eng.RegisterWorkflow("greet", engine.WorkflowType{}))
	s.Require().NoError(eng.RegisterActivity("sayHello", engine.ActivityType{}))

	w := New(eng, Config{IdleSleep: 10 * time.Millisecond})
	w.RegisterDecider("greet", decider.Workflow(decider.EventHandlers{
		OnProcessStarted: func(p *engine.Process) []engine.Decision {
			return []engine.Decision{engine.NewScheduleActivityDecision("sayHello", "a1", []byte("world"), "")}
		},
		OnActivityCompleted: func(p *engine.Process, execution engine.ActivityExecution, result []byte) []engine.Decision {
			return []engine.Decision{engine.NewCompleteProcessDecision(result)}
		},
	}))
	w.RegisterActivity("sayHello", activity.ActivityFunc(func(ctx context.Context, input []byte, monitor activity.Monitor) ([]byte, error) {
		return append([]byte("hello "), input...), nil
	}))

	ctx := context.Background()
	s.Require().NoError(w.Start(ctx))
	defer w.Stop()

	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(eng.StartProcess(ctx, p))

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := eng.ProcessByID(ctx, p.ID); engine.IsNotFound(err) {
			break
		}
		if time.Now().After(deadline) {
			s.Fail("process must reach CompleteProcess and be removed from the running set")
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (s *WorkerSuite) TestStepActivityFailsUnregisteredActivity() {
	eng := memory.New(engine.NewConfig())
	s.Require().NoError(eng.RegisterWorkflow("greet", engine.WorkflowType{}))
	s.Require().NoError(eng.RegisterActivity("sayHello", engine.ActivityType{}))

	w := New(eng, Config{})
	w.RegisterDecider("greet", decider.Workflow(decider.EventHandlers{
		OnProcessStarted: func(p *engine.Process) []engine.Decision {
			return []engine.Decision{engine.NewScheduleActivityDecision("sayHello", "a1", nil, "")}
		},
	}))
	// Deliberately no RegisterActivity("sayHello", ...).

	ctx := context.Background()
	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(eng.StartProcess(ctx, p))

	consumed, err := w.stepDecision(ctx)
	s.Require().NoError(err)
	s.True(consumed)

	consumed, err = w.stepActivity(ctx)
	s.Require().NoError(err)
	s.True(consumed)

	process, err := eng.ProcessByID(ctx, p.ID)
	s.Require().NoError(err)
	last := process.History[len(process.History)-1]
	s.Equal(engine.EventActivity, last.Kind)
	s.Equal(engine.OutcomeFailed, last.Activity.Outcome.Kind)
}

// TestStepDecisionDispatchesToTheRegisteredDecider verifies stepDecision
// calls exactly the Decider registered for the polled process's workflow,
// with that process's own task passed through unchanged. A gomock
// expectation catches an argument-forwarding regression that a real
// decider's return value alone would not.
func (s *WorkerSuite) TestStepDecisionDispatchesToTheRegisteredDecider() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	eng := memory.New(engine.NewConfig())
	s.Require().NoError(eng.RegisterWorkflow("greet", engine.WorkflowType{}))
	s.Require().NoError(eng.RegisterActivity("sayHello", engine.ActivityType{}))

	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(eng.StartProcess(context.Background(), p))

	decisions := []engine.Decision{engine.NewScheduleActivityDecision("sayHello", "a1", nil, "")}
	mockDecider := NewMockDecider(ctrl)
	mockDecider.EXPECT().Decide(gomock.Any()).DoAndReturn(func(process *engine.Process) ([]engine.Decision, error) {
		s.Equal(p.ID, process.ID, "stepDecision must dispatch with the polled process, not some other one")
		return decisions, nil
	})

	w := New(eng, Config{})
	w.RegisterDecider("greet", mockDecider)

	consumed, err := w.stepDecision(context.Background())
	s.Require().NoError(err)
	s.True(consumed)

	stored, err := eng.ProcessByID(context.Background(), p.ID)
	s.Require().NoError(err)
	last := stored.History[len(stored.History)-1]
	s.Equal(engine.EventDecision, last.Kind)
	s.Equal(engine.DecisionScheduleActivity, last.Decision.Kind)
}

func (s *WorkerSuite) TestStartIsIdempotentWhileRunning() {
	eng := memory.New(engine.NewConfig())
	w := New(eng, Config{IdleSleep: 10 * time.Millisecond})
	ctx := context.Background()

	s.Require().NoError(w.Start(ctx))
	s.Require().NoError(w.Start(ctx), "a second Start while running must be a no-op, not a double-launch")
	s.Require().NoError(w.Stop())
}

func (s *WorkerSuite) TestStopIsIdempotentWhileStopped() {
	eng := memory.New(engine.NewConfig())
	w := New(eng, Config{})
	s.Require().NoError(w.Stop(), "Stop before any Start must be a no-op, not a panic on a nil stopCh")
}
