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

// ProcessIterator is a lazy sequence of running processes, as returned by
// Engine.ListProcesses (spec.md section 9, "Iterators / lazy sequences").
// A backend paginating through a remote store implements Next to fetch one
// page at a time transparently; the in-memory backend just walks a slice.
type ProcessIterator interface {
	// Next advances to the next process, returning false once exhausted or
	// on error (check Err after Next returns false).
	Next() bool
	// Process returns the process Next just advanced to.
	Process() Process
	// Err returns the first error encountered while paging, if any.
	Err() error
}

// sliceIterator adapts an already-materialized slice to ProcessIterator;
// used by backends (like backend/memory) whose process store already lives
// entirely in memory.
type sliceIterator struct {
	processes []Process
	index     int
}

// NewSliceIterator builds a ProcessIterator over an in-memory slice.
func NewSliceIterator(processes []Process) ProcessIterator {
	return &sliceIterator{processes: processes, index: -1}
}

func (it *sliceIterator) Next() bool {
	it.index++
	return it.index < len(it.processes)
}

func (it *sliceIterator) Process() Process {
	return it.processes[it.index]
}

func (it *sliceIterator) Err() error { return nil }

// Collect drains an iterator into a slice; mainly useful in tests.
func Collect(it ProcessIterator) ([]Process, error) {
	var out []Process
	for it.Next() {
		out = append(out, it.Process())
	}
	return out, it.Err()
}
