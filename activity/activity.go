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

// Package activity implements the activity runtime contract (spec.md
// section 4.4): given a dispatched task's input, produce an outcome.
// Grounded on original_source/pyworkflow/activity/activity.go (the
// Activity base class and its execute()/heartbeat() contract) and
// original_source/pyworkflow/managed/worker/activity.py (ActivityWorker's
// execute_activity translating a raw return value/exception into an
// ActivityResult).
package activity

import (
	"context"
	"fmt"

	"github.com/uber/workflow-engine/engine"
)

// Monitor lets a running activity signal liveness back to its invoker
// without knowing anything about the backend dispatching it, the Go
// counterpart of ActivityMonitor.
type Monitor interface {
	// Heartbeat renews the activity's heartbeat deadline. Safe to call
	// repeatedly; an error means the run-id was already reclaimed
	// (engine.IsTimedOut(err)) and Execute should return promptly.
	Heartbeat(ctx context.Context) error
}

type noopMonitor struct{}

func (noopMonitor) Heartbeat(context.Context) error { return nil }

// NoopMonitor is a Monitor that discards every heartbeat, useful for
// activities run outside of a worker (tests, manual invocation).
var NoopMonitor Monitor = noopMonitor{}

// Activity executes one activity type. The package-level Execute wraps
// the bytes returned with a nil error as engine.Completed; an activity
// that ends Canceled or Failed instead returns a *ResultError (see
// Canceled and Failed). Every activity is auto-completed this way; there
// is no per-activity switch that turns the Completed wrapping off.
type Activity interface {
	Execute(ctx context.Context, input []byte, monitor Monitor) ([]byte, error)
}

// ActivityFunc adapts a plain function to Activity, auto-completing on a
// nil error.
type ActivityFunc func(ctx context.Context, input []byte, monitor Monitor) ([]byte, error)

// Execute implements Activity.
func (f ActivityFunc) Execute(ctx context.Context, input []byte, monitor Monitor) ([]byte, error) {
	return f(ctx, input, monitor)
}

// ResultError lets an Activity return a specific engine.Outcome directly
// instead of the Completed outcome Execute builds for a nil error, the Go
// replacement for raising ActivityCanceled/ActivityFailed as Python
// exceptions.
type ResultError struct {
	Outcome engine.Outcome
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("activity result: %s", e.Outcome.Kind)
}

// Canceled builds a ResultError carrying a Canceled outcome.
func Canceled(details []byte) error {
	return &ResultError{Outcome: engine.Canceled(details)}
}

// Failed builds a ResultError carrying a Failed outcome.
func Failed(reason string, details []byte) error {
	return &ResultError{Outcome: engine.Failed(reason, details)}
}

// manualActivity marks an activity type whose result is supplied out of
// band (ActivityType.ManualComplete, SPEC_FULL.md section 3.1) instead of
// by a worker calling Execute. RegisterActivity(name, Manual()) tells
// worker.Worker to dispatch the task to nothing and leave it running.
type manualActivity struct{}

func (manualActivity) Execute(context.Context, []byte, Monitor) ([]byte, error) {
	panic("activity: manual-complete activity must not be executed by a worker")
}

// Manual returns the sentinel Activity registered for a manual-complete
// activity type; worker.Worker recognizes it with IsManual and skips
// dispatch entirely rather than calling Execute.
func Manual() Activity { return manualActivity{} }

// IsManual reports whether a is the Manual() sentinel.
func IsManual(a Activity) bool {
	_, ok := a.(manualActivity)
	return ok
}

// Execute runs activity against input, translating its return value/error
// into an engine.Outcome exactly as ActivityWorker.execute_activity does:
// a *ResultError is unwrapped into its carried Outcome, any other non-nil
// error becomes Failed(err.Error(), nil), and a nil error produces
// Completed(result).
func Execute(ctx context.Context, a Activity, input []byte, monitor Monitor) (outcome engine.Outcome) {
	if monitor == nil {
		monitor = NoopMonitor
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = engine.Failed(fmt.Sprintf("panic: %v", r), nil)
		}
	}()

	result, err := a.Execute(ctx, input, monitor)
	if err == nil {
		return engine.Completed(result)
	}

	if re, ok := err.(*ResultError); ok {
		return re.Outcome
	}
	return engine.Failed(err.Error(), nil)
}
