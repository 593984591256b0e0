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
	"github.com/robfig/cron"
)

// NewCronTimerDecision builds a Timer decision whose delay is computed
// from a cron expression rather than a fixed duration, supplementing the
// plain Timer decision (spec.md section 3) with the recurring schedules a
// long-lived workflow (a daily report, a periodic reconciliation) needs.
// The decider is responsible for re-submitting another NewCronTimerDecision
// once the fired timer's event is observed, the same way it re-submits any
// other repeating decision; the engine itself has no notion of a standing
// schedule.
func NewCronTimerDecision(schedule string, data []byte) (Decision, error) {
	sched, err := cron.Parse(schedule)
	if err != nil {
		return Decision{}, NewInvalidInputError("invalid cron schedule: " + err.Error())
	}
	now := RealClock.Now()
	delay := sched.Next(now).Sub(now)
	return NewTimerDecision(delay, data), nil
}
