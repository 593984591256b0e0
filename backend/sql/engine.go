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

package sql

import (
	"context"

	"github.com/uber/workflow-engine/engine"
	"github.com/uber/workflow-engine/engine/persistence"
)

// Backend is a persistent engine.Engine over a SQL Store. Task scheduling
// itself lives in an in-process broker.Broker managed by
// engine/persistence.Backend; a Backend restarted against the same Store
// recovers every still-running process and re-schedules its decision.
type Backend = persistence.Backend

// New builds a Backend over store, recovering any still-running process.
func New(ctx context.Context, store *Store, cfg *engine.Config) (*Backend, error) {
	return persistence.NewBackend(ctx, store, cfg)
}
