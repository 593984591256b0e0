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

// Package dynamicconfig holds a handful of tunable engine knobs that a host
// application may want to change without a restart (poll timeout, sweep
// interval, per-category overrides). This is deliberately much smaller than
// a full dynamic-config service: the engine's real configuration is the
// explicit engine.Config value passed at construction (see spec.md's
// "re-architect as an explicit configuration value" note); this package
// only covers the few values worth live-tuning underneath that.
package dynamicconfig

import (
	"sync/atomic"
	"time"

	"github.com/uber/workflow-engine/common/log"
	"github.com/uber/workflow-engine/common/log/tag"
)

const errCountLogThreshold = 1000

// Key identifies a tunable value.
type Key int

// Keys this package understands.
const (
	UnknownKey Key = iota
	PollTimeout
	SweepInterval
	DecisionCategoryOverride
)

var keyNames = map[Key]string{
	UnknownKey:               "unknownKey",
	PollTimeout:              "engine.pollTimeout",
	SweepInterval:            "engine.sweepInterval",
	DecisionCategoryOverride: "engine.decisionCategoryOverride",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return keyNames[UnknownKey]
}

// Filter narrows a lookup, e.g. by task category.
type Filter int

// Filters this package understands.
const (
	UnknownFilter Filter = iota
	CategoryFilter
)

// FilterOption sets one entry of a filter map.
type FilterOption func(map[Filter]interface{})

// WithCategory filters a lookup to a specific task category.
func WithCategory(category string) FilterOption {
	return func(m map[Filter]interface{}) {
		m[CategoryFilter] = category
	}
}

// Client is the source of dynamic values. NewInMemoryClient is the only
// implementation shipped; a host application wanting remote-sourced config
// can supply its own.
type Client interface {
	GetDurationValue(key Key, filters map[Filter]interface{}, defaultValue time.Duration) (time.Duration, error)
	GetIntValue(key Key, filters map[Filter]interface{}, defaultValue int) (int, error)
	GetBoolValue(key Key, filters map[Filter]interface{}, defaultValue bool) (bool, error)
}

// Collection wraps a Client with a closure-returning API so callers read a
// config value by calling a function rather than threading the client
// through every layer.
type Collection struct {
	client   Client
	logger   log.Logger
	errCount int64
}

// NewCollection builds a Collection. Pass NewInMemoryClient() when the host
// application has no external config source.
func NewCollection(client Client, logger log.Logger) *Collection {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Collection{client: client, logger: logger, errCount: -1}
}

func (c *Collection) logError(key Key, err error) {
	errCount := atomic.AddInt64(&c.errCount, 1)
	if errCount%errCountLogThreshold == 0 {
		c.logger.Debug("dynamic config not set, using default", tag.Key(key.String()), tag.Error(err))
	}
}

// DurationPropertyFn reads a duration, optionally filtered.
type DurationPropertyFn func(opts ...FilterOption) time.Duration

// GetDurationProperty returns a closure resolving key against the client.
func (c *Collection) GetDurationProperty(key Key, defaultValue time.Duration) DurationPropertyFn {
	return func(opts ...FilterOption) time.Duration {
		filters := filterMap(opts)
		val, err := c.client.GetDurationValue(key, filters, defaultValue)
		if err != nil {
			c.logError(key, err)
			return defaultValue
		}
		return val
	}
}

// IntPropertyFn reads an int, optionally filtered.
type IntPropertyFn func(opts ...FilterOption) int

// GetIntProperty returns a closure resolving key against the client.
func (c *Collection) GetIntProperty(key Key, defaultValue int) IntPropertyFn {
	return func(opts ...FilterOption) int {
		filters := filterMap(opts)
		val, err := c.client.GetIntValue(key, filters, defaultValue)
		if err != nil {
			c.logError(key, err)
			return defaultValue
		}
		return val
	}
}

// BoolPropertyFn reads a bool, optionally filtered.
type BoolPropertyFn func(opts ...FilterOption) bool

// GetBoolProperty returns a closure resolving key against the client.
func (c *Collection) GetBoolProperty(key Key, defaultValue bool) BoolPropertyFn {
	return func(opts ...FilterOption) bool {
		filters := filterMap(opts)
		val, err := c.client.GetBoolValue(key, filters, defaultValue)
		if err != nil {
			c.logError(key, err)
			return defaultValue
		}
		return val
	}
}

func filterMap(opts []FilterOption) map[Filter]interface{} {
	m := make(map[Filter]interface{}, len(opts))
	for _, opt := range opts {
		opt(m)
	}
	return m
}
