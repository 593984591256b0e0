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

package metrics

import (
	"time"

	"github.com/uber-go/tally"
)

// Client records metrics against a tally root scope, sub-scoped by
// operation so dashboards can break down latency/error rate per engine
// call.
type Client struct {
	root tally.Scope
}

// NewClient wraps a tally.Scope. Pass tally.NoopScope in tests.
func NewClient(root tally.Scope) *Client {
	if root == nil {
		root = tally.NoopScope
	}
	return &Client{root: root}
}

func (c *Client) scope(s Scope) tally.Scope {
	return c.root.Tagged(map[string]string{"operation": s.String()})
}

// IncCounter increments a named counter within scope s.
func (c *Client) IncCounter(s Scope, name string) {
	c.scope(s).Counter(name).Inc(1)
}

// RecordLatency records how long an operation within scope s took.
func (c *Client) RecordLatency(s Scope, d time.Duration) {
	c.scope(s).Timer(RequestLatency).Record(d)
}

// UpdateGauge sets a gauge value, used for broker queue depths.
func (c *Client) UpdateGauge(s Scope, name string, value float64) {
	c.scope(s).Gauge(name).Update(value)
}

// StartTimer returns a stopwatch whose Stop() records the elapsed time as
// RequestLatency for scope s; typical use is `defer client.StartTimer(s).Stop()`.
func (c *Client) StartTimer(s Scope) tally.Stopwatch {
	return c.scope(s).Timer(RequestLatency).Start()
}
