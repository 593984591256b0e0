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
	"reflect"

	"github.com/golang/mock/gomock"

	"github.com/uber/workflow-engine/engine"
)

// MockDecider is a gomock mock of decider.Decider, in the shape mockgen
// would generate for it (this module has no go:generate toolchain step,
// so it's hand-written once rather than checked in half-stale).
type MockDecider struct {
	ctrl     *gomock.Controller
	recorder *MockDeciderMockRecorder
}

type MockDeciderMockRecorder struct {
	mock *MockDecider
}

func NewMockDecider(ctrl *gomock.Controller) *MockDecider {
	mock := &MockDecider{ctrl: ctrl}
	mock.recorder = &MockDeciderMockRecorder{mock}
	return mock
}

func (m *MockDecider) EXPECT() *MockDeciderMockRecorder {
	return m.recorder
}

func (m *MockDecider) Decide(process *engine.Process) ([]engine.Decision, error) {
	ret := m.ctrl.Call(m, "Decide", process)
	decisions, _ := ret[0].([]engine.Decision)
	err, _ := ret[1].(error)
	return decisions, err
}

func (mr *MockDeciderMockRecorder) Decide(process interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Decide", reflect.TypeOf((*MockDecider)(nil).Decide), process)
}
