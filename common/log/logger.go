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

package log

import (
	"go.uber.org/zap"

	"github.com/uber/workflow-engine/common/log/tag"
)

// Logger is the logging interface used throughout this module. Every call
// site builds its structured fields through the tag package rather than
// passing raw key/value pairs, so field names stay consistent.
type Logger interface {
	Debug(msg string, tags ...tag.Tag)
	Info(msg string, tags ...tag.Tag)
	Warn(msg string, tags ...tag.Tag)
	Error(msg string, tags ...tag.Tag)
	WithTags(tags ...tag.Tag) Logger
}

type zapLogger struct {
	zap *zap.Logger
}

// NewLogger wraps a *zap.Logger to satisfy Logger.
func NewLogger(zapLogger_ *zap.Logger) Logger {
	return &zapLogger{zap: zapLogger_}
}

// NewDevelopment returns a Logger suitable for local development/tests:
// human-readable, synchronous, level-colored output.
func NewDevelopment() Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return NewLogger(l)
}

func fields(tags []tag.Tag) []zap.Field {
	fs := make([]zap.Field, len(tags))
	for i, t := range tags {
		fs[i] = t.Field()
	}
	return fs
}

func (l *zapLogger) Debug(msg string, tags ...tag.Tag) {
	l.zap.Debug(msg, fields(tags)...)
}

func (l *zapLogger) Info(msg string, tags ...tag.Tag) {
	l.zap.Info(msg, fields(tags)...)
}

func (l *zapLogger) Warn(msg string, tags ...tag.Tag) {
	l.zap.Warn(msg, fields(tags)...)
}

func (l *zapLogger) Error(msg string, tags ...tag.Tag) {
	l.zap.Error(msg, fields(tags)...)
}

func (l *zapLogger) WithTags(tags ...tag.Tag) Logger {
	return &zapLogger{zap: l.zap.With(fields(tags)...)}
}
