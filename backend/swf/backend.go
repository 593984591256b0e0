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

// Package swf implements engine.Engine as a thin adapter over Amazon
// Simple Workflow, trading the in-process broker every other backend
// carries for SWF's own task lists and execution history (SPEC_FULL.md
// section 4.8, "hosted adapter"). Grounded on
// original_source/pyworkflow/backend/amazonswf/__init__.py, decision.py,
// process.go and task.go, translated from boto's untyped dict API onto
// github.com/aws/aws-sdk-go/service/swf's generated client, the same
// dependency github.com/sclasen/swfsm builds on
// (other_examples/d9a3c5de_sclasen-swf-go__fsm-interceptors_test.go.go).
package swf

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/swf"

	"github.com/uber/workflow-engine/common/log"
	"github.com/uber/workflow-engine/common/log/tag"
	"github.com/uber/workflow-engine/common/metrics"
	"github.com/uber/workflow-engine/engine"
)

// maxExecutionAge is SWF's own cap on workflow execution lifetime
// (__init__.py's processes(): "Max lifetime of workflow executions in SWF
// is 1 year").
const maxExecutionAge = 365 * 24 * time.Hour

func oldestStartDate() time.Time {
	return time.Now().Add(-maxExecutionAge)
}

// maxTags is the cardinality cap Amazon SWF imposes on tag_list
// (__init__.py's start_process check).
const maxTags = 5

// Config names the SWF domain a Backend talks to. Everything else
// (credentials, region, retry policy) is carried by the aws-sdk-go
// session the caller constructs, matching aws-sdk-go's own convention of
// resolving credentials/region from the session rather than a bespoke
// config struct.
type Config struct {
	Domain           string
	DecisionTaskList string // default "decisions"
	DefaultTaskList  string // default "default"
}

func (c Config) withDefaults() Config {
	if c.DecisionTaskList == "" {
		c.DecisionTaskList = "decisions"
	}
	if c.DefaultTaskList == "" {
		c.DefaultTaskList = "default"
	}
	return c
}

// Backend adapts engine.Engine onto a single SWF domain. It carries no
// task-scheduling state of its own: SWF's own decision/activity task
// lists are the broker.
type Backend struct {
	cfg     Config
	client  *swf.SWF
	logger  log.Logger
	metrics *metrics.Client

	workflows  map[string]engine.WorkflowType
	activities map[string]engine.ActivityType
}

var _ engine.Engine = (*Backend)(nil)

// New builds a Backend against an existing AWS session (github.com/aws/aws-sdk-go/aws/session).
func New(sess *session.Session, cfg Config, engineCfg *engine.Config) *Backend {
	if engineCfg == nil {
		engineCfg = engine.NewConfig()
	}
	return &Backend{
		cfg:        cfg.withDefaults(),
		client:     swf.New(sess),
		logger:     engineCfg.Logger,
		metrics:    engineCfg.Metrics,
		workflows:  make(map[string]engine.WorkflowType),
		activities: make(map[string]engine.ActivityType),
	}
}

// RegisterWorkflow implements engine.Engine. Registration in SWF is
// one-time per (domain, name, version); a type already registered is left
// alone (__init__.py's register_workflow: describe, register on NotFound).
func (b *Backend) RegisterWorkflow(name string, cfg engine.WorkflowType) error {
	b.workflows[name] = cfg
	_, err := b.client.DescribeWorkflowType(&swf.DescribeWorkflowTypeInput{
		Domain:       aws.String(b.cfg.Domain),
		WorkflowType: &swf.WorkflowType{Name: aws.String(name), Version: aws.String(typeVersion)},
	})
	if err == nil {
		return nil
	}

	category := cfg.Category
	if category == "" {
		category = b.cfg.DecisionTaskList
	}
	_, err = b.client.RegisterWorkflowType(&swf.RegisterWorkflowTypeInput{
		Domain:                                aws.String(b.cfg.Domain),
		Name:                                  aws.String(name),
		Version:                               aws.String(typeVersion),
		DefaultTaskList:                       &swf.TaskList{Name: aws.String(category)},
		DefaultChildPolicy:                    aws.String(swf.ChildPolicyAbandon),
		DefaultExecutionStartToCloseTimeout:   durationSeconds(cfg.Timeout),
		DefaultTaskStartToCloseTimeout:        durationSeconds(cfg.DecisionTimeout),
	})
	if err != nil {
		b.logger.Error("swf: register workflow type failed", tag.Workflow(name), tag.Error(err))
		return err
	}
	return nil
}

// RegisterActivity implements engine.Engine.
func (b *Backend) RegisterActivity(name string, cfg engine.ActivityType) error {
	b.activities[name] = cfg
	_, err := b.client.DescribeActivityType(&swf.DescribeActivityTypeInput{
		Domain:       aws.String(b.cfg.Domain),
		ActivityType: &swf.ActivityType{Name: aws.String(name), Version: aws.String(typeVersion)},
	})
	if err == nil {
		return nil
	}

	category := cfg.Category
	if category == "" {
		category = b.cfg.DefaultTaskList
	}
	_, err = b.client.RegisterActivityType(&swf.RegisterActivityTypeInput{
		Domain:                            aws.String(b.cfg.Domain),
		Name:                              aws.String(name),
		Version:                           aws.String(typeVersion),
		DefaultTaskList:                   &swf.TaskList{Name: aws.String(category)},
		DefaultTaskHeartbeatTimeout:       durationSeconds(cfg.HeartbeatTimeout),
		DefaultTaskScheduleToStartTimeout: durationSeconds(cfg.ScheduledTimeout),
		DefaultTaskScheduleToCloseTimeout: durationSeconds(cfg.ScheduledTimeout + cfg.ExecutionTimeout),
		DefaultTaskStartToCloseTimeout:    durationSeconds(cfg.ExecutionTimeout),
	})
	if err != nil {
		b.logger.Error("swf: register activity type failed", tag.Activity(name), tag.Error(err))
		return err
	}
	return nil
}

// StartProcess implements engine.Engine.
func (b *Backend) StartProcess(ctx context.Context, process *engine.Process) error {
	if len(process.Tags) > maxTags {
		return engine.NewInvalidInputError(fmt.Sprintf("amazon swf supports at most %d tags per process", maxTags))
	}
	_, err := b.client.StartWorkflowExecutionWithContext(ctx, &swf.StartWorkflowExecutionInput{
		Domain:       aws.String(b.cfg.Domain),
		WorkflowId:   aws.String(process.ID),
		WorkflowType: &swf.WorkflowType{Name: aws.String(process.Workflow), Version: aws.String(typeVersion)},
		Input:        bytesOrNil(process.Input),
		TagList:      aws.StringSlice(process.Tags),
	})
	if err != nil {
		return err
	}
	b.metrics.IncCounter(metrics.StartProcessScope, metrics.RequestCount)
	return nil
}

// SignalProcess implements engine.Engine.
func (b *Backend) SignalProcess(ctx context.Context, processID, name string, data []byte) error {
	_, err := b.client.SignalWorkflowExecutionWithContext(ctx, &swf.SignalWorkflowExecutionInput{
		Domain:     aws.String(b.cfg.Domain),
		WorkflowId: aws.String(processID),
		SignalName: aws.String(name),
		Input:      bytesOrNil(data),
	})
	if err != nil {
		return err
	}
	b.metrics.IncCounter(metrics.SignalProcessScope, metrics.RequestCount)
	return nil
}

// CancelProcess implements engine.Engine.
func (b *Backend) CancelProcess(ctx context.Context, processID string, details []byte, reason string) error {
	_, err := b.client.TerminateWorkflowExecutionWithContext(ctx, &swf.TerminateWorkflowExecutionInput{
		Domain:     aws.String(b.cfg.Domain),
		WorkflowId: aws.String(processID),
		Details:    bytesOrNil(details),
		Reason:     aws.String(reason),
	})
	if err != nil {
		return err
	}
	b.metrics.IncCounter(metrics.CancelProcessScope, metrics.RequestCount)
	return nil
}

// ProcessByID implements engine.Engine, fetching the full execution
// history of the named open execution.
func (b *Backend) ProcessByID(ctx context.Context, id string) (*engine.Process, error) {
	described, err := b.client.DescribeWorkflowExecutionWithContext(ctx, &swf.DescribeWorkflowExecutionInput{
		Domain:    aws.String(b.cfg.Domain),
		Execution: &swf.WorkflowExecution{WorkflowId: aws.String(id), RunId: aws.String("")},
	})
	if err != nil {
		return nil, engine.NewUnknownProcessError(id)
	}
	events, err := b.fetchHistory(ctx, described.ExecutionInfo.Execution)
	if err != nil {
		return nil, err
	}
	return processFromDescription(described.ExecutionInfo, events), nil
}

// ListProcesses implements engine.Engine. SWF cannot filter on workflow
// name and tag at once (__init__.py's processes()); this is surfaced as
// an InvalidInputError rather than silently dropping one filter.
func (b *Backend) ListProcesses(ctx context.Context, req engine.ListProcessesRequest) (engine.ProcessIterator, error) {
	if req.Workflow != "" && req.Tag != "" {
		return nil, engine.NewInvalidInputError("amazon swf cannot filter on workflow and tag at the same time")
	}

	filter := &swf.ListOpenWorkflowExecutionsInput{
		Domain:          aws.String(b.cfg.Domain),
		StartTimeFilter: &swf.ExecutionTimeFilter{OldestDate: aws.Time(oldestStartDate())},
	}
	if req.Workflow != "" {
		filter.TypeFilter = &swf.WorkflowTypeFilter{Name: aws.String(req.Workflow)}
	}
	if req.Tag != "" {
		filter.TagFilter = &swf.TagFilter{Tag: aws.String(req.Tag)}
	}

	var processes []engine.Process
	var nextPageToken *string
	for {
		filter.NextPageToken = nextPageToken
		page, err := b.client.ListOpenWorkflowExecutionsWithContext(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, info := range page.ExecutionInfos {
			events, err := b.fetchHistory(ctx, info.Execution)
			if err != nil {
				return nil, err
			}
			processes = append(processes, *processFromDescription(info, events))
		}
		if page.NextPageToken == nil {
			break
		}
		nextPageToken = page.NextPageToken
	}
	return engine.NewSliceIterator(processes), nil
}

func (b *Backend) fetchHistory(ctx context.Context, execution *swf.WorkflowExecution) ([]*swf.HistoryEvent, error) {
	var events []*swf.HistoryEvent
	var nextPageToken *string
	for {
		page, err := b.client.GetWorkflowExecutionHistoryWithContext(ctx, &swf.GetWorkflowExecutionHistoryInput{
			Domain:        aws.String(b.cfg.Domain),
			Execution:     execution,
			NextPageToken: nextPageToken,
		})
		if err != nil {
			return nil, err
		}
		events = append(events, page.Events...)
		if page.NextPageToken == nil {
			break
		}
		nextPageToken = page.NextPageToken
	}
	return events, nil
}

// Close is a no-op: the underlying aws-sdk-go client holds no connection
// that must be released explicitly.
func (b *Backend) Close() error { return nil }

func durationSeconds(d interface{ Seconds() float64 }) *string {
	return aws.String(fmt.Sprintf("%d", int64(d.Seconds())))
}
