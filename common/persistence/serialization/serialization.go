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

// Package serialization is the persistent-event wire form (SPEC_FULL.md
// section "Persistent-event wire form"): a JSON encoding of engine.Process
// and engine.Event, field-by-field the way
// common/persistence/serialization/getters.go (de)serializes cadence's
// thrift-shaped history events, simplified to stdlib encoding/json over
// our own event union since this module has no thrift-generated types to
// target.
package serialization

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uber/workflow-engine/engine"
)

// process is the wire form of engine.Process. WriteID is stamped fresh on
// every MarshalProcess call: a SQL/Cassandra row's WriteID changing
// between two reads is proof the row was rewritten in between, independent
// of whatever the row's own primary key (the process id) is doing.
type process struct {
	ID       string      `json:"id"`
	Workflow string      `json:"workflow"`
	Input    []byte      `json:"input,omitempty"`
	Tags     []string    `json:"tags,omitempty"`
	ParentID string      `json:"parent_id,omitempty"`
	WriteID  string      `json:"write_id"`
	History  []wireEvent `json:"history"`
}

type wireEvent struct {
	Kind      engine.EventKind `json:"kind"`
	Timestamp time.Time        `json:"timestamp"`

	Decision     *wireDecision     `json:"decision,omitempty"`
	Activity     *wireActivity     `json:"activity,omitempty"`
	Signal       *engine.SignalData `json:"signal,omitempty"`
	Timer        *wireDecision     `json:"timer,omitempty"`
	ChildProcess *engine.ChildProcessEvent `json:"child_process,omitempty"`
}

type wireDecision struct {
	Kind engine.DecisionKind `json:"kind"`

	ScheduleActivity  *engine.ScheduleActivity  `json:"schedule_activity,omitempty"`
	CancelActivity    *engine.CancelActivity    `json:"cancel_activity,omitempty"`
	CompleteProcess   *engine.CompleteProcess   `json:"complete_process,omitempty"`
	CancelProcess     *engine.CancelProcess     `json:"cancel_process,omitempty"`
	StartChildProcess *wireStartChildProcess    `json:"start_child_process,omitempty"`
	Timer             *engine.Timer             `json:"timer,omitempty"`
}

type wireStartChildProcess struct {
	Process process `json:"process"`
}

type wireActivity struct {
	Execution engine.ActivityExecution `json:"execution"`
	Outcome   engine.Outcome           `json:"outcome"`
}

func toWireDecision(d *engine.Decision) *wireDecision {
	if d == nil {
		return nil
	}
	wd := &wireDecision{
		Kind:              d.Kind,
		ScheduleActivity:  d.ScheduleActivity,
		CancelActivity:    d.CancelActivity,
		CompleteProcess:   d.CompleteProcess,
		CancelProcess:     d.CancelProcess,
		Timer:             d.Timer,
	}
	if d.StartChildProcess != nil {
		wd.StartChildProcess = &wireStartChildProcess{Process: toWireProcess(&d.StartChildProcess.Process)}
	}
	return wd
}

func fromWireDecision(wd *wireDecision) *engine.Decision {
	if wd == nil {
		return nil
	}
	d := &engine.Decision{
		Kind:             wd.Kind,
		ScheduleActivity: wd.ScheduleActivity,
		CancelActivity:   wd.CancelActivity,
		CompleteProcess:  wd.CompleteProcess,
		CancelProcess:    wd.CancelProcess,
		Timer:            wd.Timer,
	}
	if wd.StartChildProcess != nil {
		child := fromWireProcess(wd.StartChildProcess.Process)
		d.StartChildProcess = &engine.StartChildProcess{Process: *child}
	}
	return d
}

func toWireProcess(p *engine.Process) process {
	wp := process{
		ID:       p.ID,
		Workflow: p.Workflow,
		Input:    p.Input,
		Tags:     p.Tags,
		ParentID: p.ParentID,
		WriteID:  uuid.New().String(),
		History:  make([]wireEvent, len(p.History)),
	}
	for i, e := range p.History {
		we := wireEvent{
			Kind:         e.Kind,
			Timestamp:    e.Timestamp,
			Decision:     toWireDecision(e.Decision),
			Signal:       e.Signal,
			Timer:        toWireDecision(e.Timer),
			ChildProcess: e.ChildProcess,
		}
		if e.Activity != nil {
			we.Activity = &wireActivity{Execution: e.Activity.Execution, Outcome: e.Activity.Outcome}
		}
		wp.History[i] = we
	}
	return wp
}

func fromWireProcess(wp process) *engine.Process {
	p := &engine.Process{
		ID:       wp.ID,
		Workflow: wp.Workflow,
		Input:    wp.Input,
		Tags:     wp.Tags,
		ParentID: wp.ParentID,
		History:  make([]engine.Event, len(wp.History)),
	}
	for i, we := range wp.History {
		e := engine.Event{
			Kind:         we.Kind,
			Timestamp:    we.Timestamp,
			Decision:     fromWireDecision(we.Decision),
			Signal:       we.Signal,
			Timer:        fromWireDecision(we.Timer),
			ChildProcess: we.ChildProcess,
		}
		if we.Activity != nil {
			e.Activity = &engine.ActivityEvent{Execution: we.Activity.Execution, Outcome: we.Activity.Outcome}
		}
		p.History[i] = e
	}
	return p
}

// MarshalProcess encodes a process (including its full history) to JSON,
// the form persisted by backend/sql and backend/cassandra.
func MarshalProcess(p *engine.Process) ([]byte, error) {
	data, err := json.Marshal(toWireProcess(p))
	if err != nil {
		return nil, fmt.Errorf("serialization: marshal process %s: %w", p.ID, err)
	}
	return data, nil
}

// UnmarshalProcess decodes a process previously written by MarshalProcess.
func UnmarshalProcess(data []byte) (*engine.Process, error) {
	var wp process
	if err := json.Unmarshal(data, &wp); err != nil {
		return nil, fmt.Errorf("serialization: unmarshal process: %w", err)
	}
	return fromWireProcess(wp), nil
}
