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

package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/uber/workflow-engine/engine"
)

type ActivitySuite struct {
	*require.Assertions
	suite.Suite
}

func TestActivitySuite(t *testing.T) {
	suite.Run(t, new(ActivitySuite))
}

func (s *ActivitySuite) SetupTest() {
	s.Assertions = require.New(s.T())
}

func (s *ActivitySuite) TestExecuteCompletesOnNilError() {
	a := ActivityFunc(func(ctx context.Context, input []byte, monitor Monitor) ([]byte, error) {
		return []byte("ok"), nil
	})
	outcome := Execute(context.Background(), a, nil, nil)
	s.Equal(engine.OutcomeCompleted, outcome.Kind)
	s.Equal([]byte("ok"), outcome.Result)
}

func (s *ActivitySuite) TestExecuteFailsOnPlainError() {
	a := ActivityFunc(func(ctx context.Context, input []byte, monitor Monitor) ([]byte, error) {
		return nil, errors.New("boom")
	})
	outcome := Execute(context.Background(), a, nil, nil)
	s.Equal(engine.OutcomeFailed, outcome.Kind)
	s.Equal("boom", outcome.Reason)
}

func (s *ActivitySuite) TestExecuteUnwrapsResultError() {
	a := ActivityFunc(func(ctx context.Context, input []byte, monitor Monitor) ([]byte, error) {
		return nil, Canceled([]byte("caller gave up"))
	})
	outcome := Execute(context.Background(), a, nil, nil)
	s.Equal(engine.OutcomeCanceled, outcome.Kind)
	s.Equal([]byte("caller gave up"), outcome.Details)
}

func (s *ActivitySuite) TestExecuteUnwrapsFailedResultError() {
	a := ActivityFunc(func(ctx context.Context, input []byte, monitor Monitor) ([]byte, error) {
		return nil, Failed("validation failed", []byte("bad input"))
	})
	outcome := Execute(context.Background(), a, nil, nil)
	s.Equal(engine.OutcomeFailed, outcome.Kind)
	s.Equal("validation failed", outcome.Reason)
	s.Equal([]byte("bad input"), outcome.Details)
}

func (s *ActivitySuite) TestExecuteRecoversFromPanic() {
	a := ActivityFunc(func(ctx context.Context, input []byte, monitor Monitor) ([]byte, error) {
		panic("unexpected nil pointer somewhere")
	})
	outcome := Execute(context.Background(), a, nil, nil)
	s.Equal(engine.OutcomeFailed, outcome.Kind)
	s.Contains(outcome.Reason, "panic")
}

func (s *ActivitySuite) TestExecuteDefaultsToNoopMonitor() {
	var calledWithNilMonitor bool
	a := ActivityFunc(func(ctx context.Context, input []byte, monitor Monitor) ([]byte, error) {
		calledWithNilMonitor = monitor != nil
		return nil, monitor.Heartbeat(ctx)
	})
	outcome := Execute(context.Background(), a, nil, nil)
	s.True(calledWithNilMonitor)
	s.Equal(engine.OutcomeCompleted, outcome.Kind)
}

func (s *ActivitySuite) TestManualSentinelIsRecognized() {
	s.True(IsManual(Manual()))
	s.False(IsManual(ActivityFunc(func(context.Context, []byte, Monitor) ([]byte, error) { return nil, nil })))
}

func (s *ActivitySuite) TestManualActivityPanicsIfExecuted() {
	s.Panics(func() {
		Manual().Execute(context.Background(), nil, NoopMonitor)
	})
}
