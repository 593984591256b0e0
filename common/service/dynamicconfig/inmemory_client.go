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

package dynamicconfig

import (
	"fmt"
	"sync"
	"time"
)

type inMemoryClient struct {
	sync.RWMutex
	values map[Key]interface{}
}

// NewInMemoryClient returns a Client backed by a plain map, set via
// SetValue. This is what an engine uses when the host application has no
// external dynamic-config source.
func NewInMemoryClient() Client {
	return &inMemoryClient{values: make(map[Key]interface{})}
}

// SetValue overrides a key. filters are ignored by this client: it has no
// notion of per-category overrides, it simply returns the last value set.
func (c *inMemoryClient) SetValue(key Key, value interface{}) {
	c.Lock()
	defer c.Unlock()
	c.values[key] = value
}

func (c *inMemoryClient) GetDurationValue(key Key, _ map[Filter]interface{}, defaultValue time.Duration) (time.Duration, error) {
	c.RLock()
	defer c.RUnlock()
	if v, ok := c.values[key]; ok {
		d, ok := v.(time.Duration)
		if !ok {
			return defaultValue, fmt.Errorf("dynamicconfig: %s is not a duration", key)
		}
		return d, nil
	}
	return defaultValue, fmt.Errorf("dynamicconfig: %s not set", key)
}

func (c *inMemoryClient) GetIntValue(key Key, _ map[Filter]interface{}, defaultValue int) (int, error) {
	c.RLock()
	defer c.RUnlock()
	if v, ok := c.values[key]; ok {
		i, ok := v.(int)
		if !ok {
			return defaultValue, fmt.Errorf("dynamicconfig: %s is not an int", key)
		}
		return i, nil
	}
	return defaultValue, fmt.Errorf("dynamicconfig: %s not set", key)
}

func (c *inMemoryClient) GetBoolValue(key Key, _ map[Filter]interface{}, defaultValue bool) (bool, error) {
	c.RLock()
	defer c.RUnlock()
	if v, ok := c.values[key]; ok {
		b, ok := v.(bool)
		if !ok {
			return defaultValue, fmt.Errorf("dynamicconfig: %s is not a bool", key)
		}
		return b, nil
	}
	return defaultValue, fmt.Errorf("dynamicconfig: %s not set", key)
}
