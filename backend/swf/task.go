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

package swf

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/swf"

	"github.com/uber/workflow-engine/common/metrics"
	"github.com/uber/workflow-engine/engine"
)

// PollDecisionTask implements engine.Engine. SWF's own long-poll (up to
// 60s, held open server-side) replaces this module's broker.Broker.Poll*
// methods entirely; the run-id correlating the eventual Complete* call is
// SWF's opaque task token (task.py's AmazonSWFDecisionTask.token).
func (b *Backend) PollDecisionTask(ctx context.Context, req engine.PollRequest) (*engine.DecisionTask, error) {
	category := req.Category
	if category == "" {
		category = b.cfg.DecisionTaskList
	}

	var events []*swf.HistoryEvent
	var execution *swf.WorkflowExecution
	var workflowType *swf.WorkflowType
	var token *string
	var nextPageToken *string

	for {
		out, err := b.client.PollForDecisionTaskWithContext(ctx, &swf.PollForDecisionTaskInput{
			Domain:        aws.String(b.cfg.Domain),
			TaskList:      &swf.TaskList{Name: aws.String(category)},
			Identity:      aws.String(req.Identity),
			NextPageToken: nextPageToken,
		})
		if err != nil {
			return nil, err
		}
		if out.TaskToken == nil || aws.StringValue(out.TaskToken) == "" {
			return nil, nil
		}
		token = out.TaskToken
		execution = out.WorkflowExecution
		workflowType = out.WorkflowType
		events = append(events, out.Events...)
		if out.NextPageToken == nil {
			break
		}
		nextPageToken = out.NextPageToken
	}

	process := &engine.Process{
		ID:       aws.StringValue(execution.WorkflowId),
		Workflow: aws.StringValue(workflowType.Name),
		History:  buildHistory(events),
	}
	b.metrics.IncCounter(metrics.PollDecisionTaskScope, metrics.RequestCount)
	return &engine.DecisionTask{Process: *process, Context: engine.TaskContext{RunID: aws.StringValue(token)}}, nil
}

// PollActivityTask implements engine.Engine.
func (b *Backend) PollActivityTask(ctx context.Context, req engine.PollRequest) (*engine.ActivityTask, error) {
	category := req.Category
	if category == "" {
		category = b.cfg.DefaultTaskList
	}
	out, err := b.client.PollForActivityTaskWithContext(ctx, &swf.PollForActivityTaskInput{
		Domain:   aws.String(b.cfg.Domain),
		TaskList: &swf.TaskList{Name: aws.String(category)},
		Identity: aws.String(req.Identity),
	})
	if err != nil {
		return nil, err
	}
	if out.TaskToken == nil || aws.StringValue(out.TaskToken) == "" {
		return nil, nil
	}

	execution := engine.ActivityExecution{
		Activity: aws.StringValue(out.ActivityType.Name),
		ID:       aws.StringValue(out.ActivityId),
		Input:    []byte(aws.StringValue(out.Input)),
	}
	b.metrics.IncCounter(metrics.PollActivityTaskScope, metrics.RequestCount)
	return &engine.ActivityTask{
		Execution: execution,
		ProcessID: aws.StringValue(out.WorkflowExecution.WorkflowId),
		Context:   engine.TaskContext{RunID: aws.StringValue(out.TaskToken)},
	}, nil
}

// HeartbeatActivity implements engine.Engine. SWF returns a fault with
// type UnknownResourceFault once the activity's heartbeat/schedule
// deadline has already expired server-side (__init__.py's
// heartbeat_activity_task); that is surfaced as a *engine.TimedOutError.
func (b *Backend) HeartbeatActivity(ctx context.Context, task engine.ActivityTask) error {
	_, err := b.client.RecordActivityTaskHeartbeatWithContext(ctx, &swf.RecordActivityTaskHeartbeatInput{
		TaskToken: aws.String(task.Context.RunID),
	})
	if isUnknownResource(err) {
		return engine.NewTimedOutError(engine.KindActivity, task.Context.RunID)
	}
	if err != nil {
		return err
	}
	b.metrics.IncCounter(metrics.HeartbeatActivityScope, metrics.RequestCount)
	return nil
}

// CompleteDecisionTask implements engine.Engine.
func (b *Backend) CompleteDecisionTask(ctx context.Context, task engine.DecisionTask, decisions []engine.Decision) error {
	swfDecisions := make([]*swf.Decision, 0, len(decisions))
	for _, d := range decisions {
		translated, err := translateDecision(b.cfg.DefaultTaskList, d)
		if err != nil {
			return err
		}
		swfDecisions = append(swfDecisions, translated)
	}

	_, err := b.client.RespondDecisionTaskCompletedWithContext(ctx, &swf.RespondDecisionTaskCompletedInput{
		TaskToken: aws.String(task.Context.RunID),
		Decisions: swfDecisions,
	})
	if isUnknownResource(err) {
		return engine.NewTimedOutError(engine.KindDecision, task.Context.RunID)
	}
	if err != nil {
		return err
	}
	b.metrics.IncCounter(metrics.CompleteDecisionTaskScope, metrics.RequestCount)
	return nil
}

// CompleteActivityTask implements engine.Engine.
func (b *Backend) CompleteActivityTask(ctx context.Context, task engine.ActivityTask, result engine.Outcome) error {
	var err error
	switch result.Kind {
	case engine.OutcomeCompleted:
		_, err = b.client.RespondActivityTaskCompletedWithContext(ctx, &swf.RespondActivityTaskCompletedInput{
			TaskToken: aws.String(task.Context.RunID),
			Result:    bytesOrNil(result.Result),
		})
	case engine.OutcomeCanceled:
		_, err = b.client.RespondActivityTaskCanceledWithContext(ctx, &swf.RespondActivityTaskCanceledInput{
			TaskToken: aws.String(task.Context.RunID),
			Details:   bytesOrNil(result.Details),
		})
	default: // Failed, TimedOut
		_, err = b.client.RespondActivityTaskFailedWithContext(ctx, &swf.RespondActivityTaskFailedInput{
			TaskToken: aws.String(task.Context.RunID),
			Reason:    aws.String(result.Reason),
			Details:   bytesOrNil(result.Details),
		})
	}
	if isUnknownResource(err) {
		return engine.NewTimedOutError(engine.KindActivity, task.Context.RunID)
	}
	if err != nil {
		return err
	}
	b.metrics.IncCounter(metrics.CompleteActivityTaskScope, metrics.RequestCount)
	return nil
}

func isUnknownResource(err error) bool {
	if err == nil {
		return false
	}
	if aerr, ok := err.(interface{ Code() string }); ok {
		return aerr.Code() == swf.ErrCodeUnknownResourceFault
	}
	return false
}
