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

package observer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/uber/workflow-engine/engine"
)

// fakeEngine is a minimal engine.Engine for exercising Backend in
// isolation, standing in for backend/memory or a persistence-backed
// engine the way engine/persistence's own tests stand in for backend/sql.
type fakeEngine struct {
	engine.Engine
	startErr error

	started []*engine.Process
}

func (f *fakeEngine) StartProcess(ctx context.Context, p *engine.Process) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, p)
	return nil
}

func (f *fakeEngine) CompleteDecisionTask(ctx context.Context, task engine.DecisionTask, decisions []engine.Decision) error {
	return nil
}

func (f *fakeEngine) CompleteActivityTask(ctx context.Context, task engine.ActivityTask, result engine.Outcome) error {
	return nil
}

type ObserverSuite struct {
	*require.Assertions
	suite.Suite
}

func TestObserverSuite(t *testing.T) {
	suite.Run(t, new(ObserverSuite))
}

func (s *ObserverSuite) SetupTest() {
	s.Assertions = require.New(s.T())
}

func (s *ObserverSuite) TestStartProcessEmitsEventOnlyOnSuccess() {
	var got []Event
	sub := ObserverFunc(func(e Event) { got = append(got, e) })

	ok := New(&fakeEngine{}, sub)
	p := &engine.Process{Workflow: "greet"}
	s.Require().NoError(ok.StartProcess(context.Background(), p))
	s.Require().Len(got, 1)
	s.Equal(EventProcessStarted, got[0].Kind)
	s.Equal(p, got[0].Process)

	got = nil
	failing := New(&fakeEngine{startErr: errors.New("boom")}, sub)
	err := failing.StartProcess(context.Background(), &engine.Process{})
	s.Error(err)
	s.Empty(got, "a failed StartProcess must not notify any observer")
}

func (s *ObserverSuite) TestCompleteDecisionTaskEmitsOnePerDecision() {
	var got []Event
	sub := ObserverFunc(func(e Event) { got = append(got, e) })
	b := New(&fakeEngine{}, sub)

	task := engine.DecisionTask{Process: engine.Process{ID: "p1"}}
	decisions := []engine.Decision{
		engine.NewScheduleActivityDecision("act", "a1", nil, ""),
		engine.NewCompleteProcessDecision(nil),
	}
	s.Require().NoError(b.CompleteDecisionTask(context.Background(), task, decisions))

	s.Require().Len(got, 3, "one DecisionTaskCompleted event plus one per terminal/scheduling decision")
	s.Equal(EventDecisionTaskCompleted, got[0].Kind)
	s.Equal(EventActivityScheduled, got[1].Kind)
	s.Equal(EventProcessCompletedByTask, got[2].Kind)
}

func (s *ObserverSuite) TestCompleteActivityTaskEmitsKindByOutcome() {
	cases := []struct {
		outcome engine.Outcome
		want    EventKind
	}{
		{engine.Completed([]byte("ok")), EventActivityTaskCompleted},
		{engine.Canceled(nil), EventActivityCanceled},
		{engine.Failed("boom", nil), EventActivityTaskFailed},
		{engine.TimedOut(nil), EventActivityTaskTimedOut},
	}

	for _, c := range cases {
		var got []Event
		sub := ObserverFunc(func(e Event) { got = append(got, e) })
		b := New(&fakeEngine{}, sub)

		s.Require().NoError(b.CompleteActivityTask(context.Background(), engine.ActivityTask{}, c.outcome))
		s.Require().Len(got, 1)
		s.Equal(c.want, got[0].Kind, "outcome kind %s", c.outcome.Kind)
	}
}

func (s *ObserverSuite) TestSubscribeAddsAnObserverAfterConstruction() {
	var calls int
	b := New(&fakeEngine{})
	b.Subscribe(ObserverFunc(func(Event) { calls++ }))

	s.Require().NoError(b.StartProcess(context.Background(), &engine.Process{}))
	s.Equal(1, calls)
}
