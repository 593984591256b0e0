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

import (
	"time"

	"github.com/uber/workflow-engine/common/log"
	"github.com/uber/workflow-engine/common/metrics"
)

// Defaults holds the constants named in spec.md section 6. It is a
// package-level value: engine/broker and worker.Config read it directly
// whenever a registered type or a worker config leaves the matching field
// zero. Config below carries no copy of it, so changing a fallback means
// changing Defaults itself, for every backend in the process.
var Defaults = struct {
	WorkflowTimeout          time.Duration
	DecisionTimeout          time.Duration
	ActivityScheduledTimeout time.Duration
	ActivityExecutionTimeout time.Duration
	ActivityHeartbeatTimeout time.Duration
	DefaultCategory          string
	DecisionCategory         string
}{
	WorkflowTimeout:          365 * 24 * time.Hour,
	DecisionTimeout:          60 * time.Second,
	ActivityScheduledTimeout: 365 * 24 * time.Hour,
	ActivityExecutionTimeout: 365 * 24 * time.Hour,
	ActivityHeartbeatTimeout: time.Hour,
	DefaultCategory:          "default",
	DecisionCategory:         "decisions",
}

// Clock abstracts time.Now so tests can drive the broker's expiration
// sweeps deterministically instead of sleeping.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock is the Clock every production backend uses by default.
var RealClock Clock = realClock{}

// Config is the explicit configuration value every backend constructor
// takes: logger, metrics, clock and poll timeout. The timeout and category
// fallbacks are not part of it; they stay in Defaults above.
type Config struct {
	Logger  log.Logger
	Metrics *metrics.Client
	Clock   Clock

	// PollTimeout bounds how long PollDecisionTask/PollActivityTask may
	// block before returning empty (spec.md section 5, "Suspension points").
	PollTimeout time.Duration
}

// NewConfig returns a Config with every field defaulted; callers override
// what they need.
func NewConfig() *Config {
	return &Config{
		Logger:      log.NewNop(),
		Metrics:     metrics.NewClient(nil),
		Clock:       RealClock,
		PollTimeout: 0,
	}
}

func (c *Config) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock.Now()
}

// Now returns the current time according to this Config's Clock.
func (c *Config) Now() time.Time {
	return c.now()
}
