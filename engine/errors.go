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

package engine

import "fmt"

// Kind values shared by NotFoundError and TimedOutError.
const (
	KindProcess  = "process"
	KindActivity = "activity"
	KindDecision = "decision"
)

// NotFoundError is returned when a caller references a process, activity
// run or decision run that the backend has never heard of. Kind
// distinguishes which of the three so callers can log/branch without
// string-matching the message.
type NotFoundError struct {
	Kind string // "process", "activity", "decision"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, e.ID)
}

// NewUnknownProcessError builds the error returned when a process id is not found.
func NewUnknownProcessError(id string) error {
	return &NotFoundError{Kind: KindProcess, ID: id}
}

// NewUnknownActivityError builds the error returned when an activity run-id is not found.
func NewUnknownActivityError(runID string) error {
	return &NotFoundError{Kind: KindActivity, ID: runID}
}

// NewUnknownDecisionError builds the error returned when a decision run-id is not found.
func NewUnknownDecisionError(runID string) error {
	return &NotFoundError{Kind: KindDecision, ID: runID}
}

// TimedOutError reports a run-id that the backend does not hold as
// running. backend/memory and engine/persistence return it for every such
// run-id, whether the expiration sweeper reclaimed the task or the id was
// never issued; they do not tell the two cases apart and do not return
// the NotFoundError built by NewUnknownActivityError or
// NewUnknownDecisionError.
type TimedOutError struct {
	Kind  string // "activity" or "decision"
	RunID string
}

func (e *TimedOutError) Error() string {
	return fmt.Sprintf("%s run %s timed out", e.Kind, e.RunID)
}

// NewTimedOutError builds a TimedOutError for the given run kind.
func NewTimedOutError(kind, runID string) error {
	return &TimedOutError{Kind: kind, RunID: runID}
}

// InvalidDecisionError is returned when a decider returns a value that is
// neither a Decision nor a registered activity reference.
type InvalidDecisionError struct {
	Value interface{}
}

func (e *InvalidDecisionError) Error() string {
	return fmt.Sprintf("invalid decision: %#v", e.Value)
}

// InvalidInputError is returned for caller-supplied input that fails an
// adapter-level constraint (e.g. the hosted backend's tag-count cap).
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// NewInvalidInputError builds an InvalidInputError with the given reason.
func NewInvalidInputError(reason string) error {
	return &InvalidInputError{Reason: reason}
}

// IsNotFound reports whether err is a NotFoundError (of any kind).
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsTimedOut reports whether err is a TimedOutError.
func IsTimedOut(err error) bool {
	_, ok := err.(*TimedOutError)
	return ok
}
