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

// Package persistence declares the Store contract shared by backend/sql
// and backend/cassandra (SPEC_FULL.md section 4.7): a durable home for a
// process's identity and append-only history, sized to this module's four
// broker structures instead of cadence's full mutable-state snapshot
// model (see DESIGN.md, "Deleted teacher modules").
package persistence

import (
	"context"

	"github.com/uber/workflow-engine/engine"
)

// Store persists processes. Scheduling/expiration state itself (the four
// broker structures) stays in memory per backend instance — Store is
// responsible only for surviving a process restart and for ListProcesses,
// not for distributing tasks across instances.
type Store interface {
	// SaveProcess upserts a process's full current state, including its
	// history, in one write.
	SaveProcess(ctx context.Context, process *engine.Process) error

	// LoadProcess returns a process by id, or a *engine.NotFoundError.
	LoadProcess(ctx context.Context, id string) (*engine.Process, error)

	// DeleteProcess removes a process, called once it reaches a terminal
	// decision.
	DeleteProcess(ctx context.Context, id string) error

	// ListProcesses returns every stored process matching req in one
	// slice. backend/cassandra reads gocql's paged iterator to the end
	// before returning, so no implementation returns a partial page;
	// Backend.ListProcesses wraps the slice in an engine.ProcessIterator.
	ListProcesses(ctx context.Context, req engine.ListProcessesRequest) ([]engine.Process, error)

	// Close releases the store's underlying connection/session.
	Close() error
}
