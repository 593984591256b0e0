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

// Package tag holds typed functional options used to attach structured
// fields to a log line without forcing call sites to build map[string]interface{}
// by hand.
package tag

import "go.uber.org/zap"

// Tag is a structured logging field. The underlying zap.Field is kept
// private so that callers can only build tags through the constructors
// below, which keeps key names consistent across the codebase.
type Tag struct {
	field zap.Field
}

func newTag(key string, value interface{}) Tag {
	return Tag{field: zap.Any(key, value)}
}

// Field exposes the underlying zap.Field for the zap-backed logger.
func (t Tag) Field() zap.Field {
	return t.field
}

// Error tags an error value.
func Error(err error) Tag {
	return Tag{field: zap.Error(err)}
}

// ProcessID tags a process identity.
func ProcessID(id string) Tag {
	return newTag("process-id", id)
}

// ParentProcessID tags the parent of a child process.
func ParentProcessID(id string) Tag {
	return newTag("parent-process-id", id)
}

// Workflow tags a registered workflow type name.
func Workflow(name string) Tag {
	return newTag("workflow", name)
}

// Activity tags a registered activity type name.
func Activity(name string) Tag {
	return newTag("activity", name)
}

// ActivityID tags an activity execution id (scoped to its process).
func ActivityID(id string) Tag {
	return newTag("activity-id", id)
}

// RunID tags the broker-assigned run-id correlating dispatch and completion.
func RunID(id string) Tag {
	return newTag("run-id", id)
}

// Category tags a task-list category.
func Category(category string) Tag {
	return newTag("category", category)
}

// Identity tags a worker identity string.
func Identity(identity string) Tag {
	return newTag("identity", identity)
}

// SignalName tags a signal's name.
func SignalName(name string) Tag {
	return newTag("signal-name", name)
}

// EventKind tags the kind of an appended history event.
func EventKind(kind string) Tag {
	return newTag("event-kind", kind)
}

// DecisionKind tags the kind of a decision within a decision task.
func DecisionKind(kind string) Tag {
	return newTag("decision-kind", kind)
}

// Count tags a generic integer count (queue depth, sweep batch size, ...).
func Count(n int) Tag {
	return newTag("count", n)
}

// Key tags a dynamic-config key name.
func Key(key string) Tag {
	return newTag("key", key)
}

// Value tags a dynamic-config resolved value.
func Value(value interface{}) Tag {
	return newTag("value", value)
}

// DefaultValue tags a dynamic-config fallback value.
func DefaultValue(value interface{}) Tag {
	return newTag("default-value", value)
}

// Attempt tags a retry attempt counter.
func Attempt(n int) Tag {
	return newTag("attempt", n)
}
