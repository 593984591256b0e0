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

// Package cli implements wfctl, the operator-facing debug CLI for
// inspecting and driving a running engine.Engine (SPEC_FULL.md section
// 2.1, the tools/cli rows), the way tools/cli implements cadence's debug CLI over
// client.Client.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/uber/workflow-engine/engine"
)

func connect(c *cli.Context) engine.Engine {
	cfg, err := LoadConfig(c.GlobalString(FlagConfig))
	if err != nil {
		ErrorAndExit("failed to load config", err)
	}
	e, err := cfg.Connect(context.Background())
	if err != nil {
		ErrorAndExit("failed to connect to backend", err)
	}
	return e
}

func newProcessCommands() []cli.Command {
	return []cli.Command{
		{
			Name:    "list",
			Aliases: []string{"l"},
			Usage:   "list running processes",
			Flags: []cli.Flag{
				cli.StringFlag{Name: FlagWorkflow, Usage: "filter by workflow type"},
				cli.StringFlag{Name: FlagTag, Usage: "filter by tag"},
			},
			Action: func(c *cli.Context) {
				ListProcesses(c)
			},
		},
		{
			Name:    "describe",
			Aliases: []string{"desc"},
			Usage:   "describe one process, including its full history",
			Flags: []cli.Flag{
				cli.StringFlag{Name: FlagProcessID, Usage: "process id"},
			},
			Action: func(c *cli.Context) {
				DescribeProcess(c)
			},
		},
		{
			Name:  "signal",
			Usage: "send a signal to a running process",
			Flags: []cli.Flag{
				cli.StringFlag{Name: FlagProcessID, Usage: "process id"},
				cli.StringFlag{Name: FlagSignalName, Usage: "signal name"},
				cli.StringFlag{Name: FlagInput, Usage: "signal payload"},
			},
			Action: func(c *cli.Context) {
				SignalProcess(c)
			},
		},
		{
			Name:  "cancel",
			Usage: "cancel a running process",
			Flags: []cli.Flag{
				cli.StringFlag{Name: FlagProcessID, Usage: "process id"},
				cli.StringFlag{Name: FlagReason, Usage: "cancellation reason"},
				cli.StringFlag{Name: FlagDetails, Usage: "cancellation details"},
			},
			Action: func(c *cli.Context) {
				CancelProcess(c)
			},
		},
	}
}

// ListProcesses implements `wfctl process list`.
func ListProcesses(c *cli.Context) {
	e := connect(c)
	ctx := context.Background()

	it, err := e.ListProcesses(ctx, engine.ListProcessesRequest{
		Workflow: c.String(FlagWorkflow),
		Tag:      c.String(FlagTag),
	})
	if err != nil {
		ErrorAndExit("failed to list processes", err)
	}

	table := newTable([]string{"Process ID", "Workflow", "Tags", "Parent"})
	for it.Next() {
		p := it.Process()
		table.Append([]string{p.ID, p.Workflow, strings.Join(p.Tags, ","), p.ParentID})
	}
	if err := it.Err(); err != nil {
		ErrorAndExit("failed while paging processes", err)
	}
	table.Render()
}

// DescribeProcess implements `wfctl process describe`.
func DescribeProcess(c *cli.Context) {
	e := connect(c)
	id := getRequiredOption(c, FlagProcessID)

	p, err := e.ProcessByID(context.Background(), id)
	if err != nil {
		ErrorAndExit("failed to describe process", err)
	}

	fmt.Printf("Process ID: %s\n", p.ID)
	fmt.Printf("Workflow:   %s\n", p.Workflow)
	fmt.Printf("Tags:       %s\n", strings.Join(p.Tags, ","))
	if p.HasParent() {
		fmt.Printf("Parent:     %s\n", p.ParentID)
	}
	if p.IsRunning() {
		fmt.Printf("Status:     %s\n", colorGreen("running"))
	} else {
		fmt.Printf("Status:     %s\n", colorYellow("closed"))
	}
	fmt.Println()

	table := newTable([]string{"Timestamp", "Event"})
	for _, ev := range p.History {
		table.Append([]string{
			ev.Timestamp.Format(time.RFC3339),
			eventSummary(ev),
		})
	}
	table.Render()
}

func eventSummary(e engine.Event) string {
	switch e.Kind {
	case engine.EventDecision:
		if e.Decision == nil {
			return eventColor(e.Kind, nil)
		}
		return eventColor(e.Kind, nil) + " " + string(e.Decision.Kind)
	case engine.EventActivity:
		if e.Activity == nil {
			return eventColor(e.Kind, nil)
		}
		return fmt.Sprintf("%s %s(%s)", eventColor(e.Kind, &e.Activity.Outcome), e.Activity.Execution.Activity, e.Activity.Execution.ID)
	case engine.EventActivityStarted:
		if e.Activity == nil {
			return eventColor(e.Kind, nil)
		}
		return fmt.Sprintf("%s %s(%s)", eventColor(e.Kind, nil), e.Activity.Execution.Activity, e.Activity.Execution.ID)
	case engine.EventSignal:
		if e.Signal == nil {
			return eventColor(e.Kind, nil)
		}
		return eventColor(e.Kind, nil) + " " + e.Signal.Name
	case engine.EventChildProcess:
		if e.ChildProcess == nil {
			return eventColor(e.Kind, nil)
		}
		return fmt.Sprintf("%s %s(%s)", eventColor(e.Kind, &e.ChildProcess.Outcome), e.ChildProcess.Workflow, e.ChildProcess.ProcessID)
	default:
		return eventColor(e.Kind, nil)
	}
}

// SignalProcess implements `wfctl process signal`.
func SignalProcess(c *cli.Context) {
	e := connect(c)
	id := getRequiredOption(c, FlagProcessID)
	name := getRequiredOption(c, FlagSignalName)

	if err := e.SignalProcess(context.Background(), id, name, []byte(c.String(FlagInput))); err != nil {
		ErrorAndExit("failed to signal process", err)
	}
	fmt.Printf("%s signal %s sent to %s\n", colorGreen("OK"), name, id)
}

// CancelProcess implements `wfctl process cancel`.
func CancelProcess(c *cli.Context) {
	e := connect(c)
	id := getRequiredOption(c, FlagProcessID)

	if err := e.CancelProcess(context.Background(), id, []byte(c.String(FlagDetails)), c.String(FlagReason)); err != nil {
		ErrorAndExit("failed to cancel process", err)
	}
	fmt.Printf("%s process %s canceled\n", colorGreen("OK"), id)
}
