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
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/swf"

	"github.com/uber/workflow-engine/engine"
)

const typeVersion = "1.0"

// translateDecision maps one engine.Decision onto the swf.Decision SWF
// expects back from RespondDecisionTaskCompleted, one decisionType per
// engine.DecisionKind (decision.py's AmazonSWFDecision, translated from a
// class-per-kind hierarchy into a single switch since Decision here is
// already a tagged union).
func translateDecision(category string, d engine.Decision) (*swf.Decision, error) {
	switch d.Kind {
	case engine.DecisionScheduleActivity:
		a := d.ScheduleActivity
		list := a.Category
		if list == "" {
			list = category
		}
		return &swf.Decision{
			DecisionType: aws.String(swf.DecisionTypeScheduleActivityTask),
			ScheduleActivityTaskDecisionAttributes: &swf.ScheduleActivityTaskDecisionAttributes{
				ActivityId:   aws.String(a.ID),
				ActivityType: &swf.ActivityType{Name: aws.String(a.Activity), Version: aws.String(typeVersion)},
				Input:        bytesOrNil(a.Input),
				TaskList:     &swf.TaskList{Name: aws.String(list)},
			},
		}, nil

	case engine.DecisionCancelActivity:
		return &swf.Decision{
			DecisionType: aws.String(swf.DecisionTypeRequestCancelActivityTask),
			RequestCancelActivityTaskDecisionAttributes: &swf.RequestCancelActivityTaskDecisionAttributes{
				ActivityId: aws.String(d.CancelActivity.ID),
			},
		}, nil

	case engine.DecisionCompleteProcess:
		return &swf.Decision{
			DecisionType: aws.String(swf.DecisionTypeCompleteWorkflowExecution),
			CompleteWorkflowExecutionDecisionAttributes: &swf.CompleteWorkflowExecutionDecisionAttributes{
				Result: bytesOrNil(d.CompleteProcess.Result),
			},
		}, nil

	case engine.DecisionCancelProcess:
		return &swf.Decision{
			DecisionType: aws.String(swf.DecisionTypeCancelWorkflowExecution),
			CancelWorkflowExecutionDecisionAttributes: &swf.CancelWorkflowExecutionDecisionAttributes{
				Details: bytesOrNilString(d.CancelProcess.Details),
			},
		}, nil

	case engine.DecisionStartChildProcess:
		child := d.StartChildProcess.Process
		return &swf.Decision{
			DecisionType: aws.String(swf.DecisionTypeStartChildWorkflowExecution),
			StartChildWorkflowExecutionDecisionAttributes: &swf.StartChildWorkflowExecutionDecisionAttributes{
				WorkflowType: &swf.WorkflowType{Name: aws.String(child.Workflow), Version: aws.String(typeVersion)},
				WorkflowId:   aws.String(child.ID),
				Input:        bytesOrNil(child.Input),
				TagList:      aws.StringSlice(child.Tags),
			},
		}, nil

	case engine.DecisionTimer:
		t := d.Timer
		return &swf.Decision{
			DecisionType: aws.String(swf.DecisionTypeStartTimer),
			StartTimerDecisionAttributes: &swf.StartTimerDecisionAttributes{
				TimerId:            aws.String(fmt.Sprintf("%d", int64(t.Delay.Seconds()))),
				StartToFireTimeout: aws.String(fmt.Sprintf("%d", int64(t.Delay.Seconds()))),
			},
		}, nil

	default:
		return nil, fmt.Errorf("swf: unsupported decision kind %q", d.Kind)
	}
}

func bytesOrNil(b []byte) *string {
	if len(b) == 0 {
		return nil
	}
	return aws.String(string(b))
}

func bytesOrNilString(b []byte) *string {
	return bytesOrNil(b)
}
