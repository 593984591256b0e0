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

package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/uber/workflow-engine/engine"
)

var (
	colorRed     = color.New(color.FgRed).SprintFunc()
	colorGreen   = color.New(color.FgGreen).SprintFunc()
	colorYellow  = color.New(color.FgYellow).SprintFunc()
	colorMagenta = color.New(color.FgMagenta).SprintFunc()
)

// osExit is a var, not a direct os.Exit call, so ErrorAndExit can be
// exercised from a test without killing the test binary.
var osExit = os.Exit

func printError(msg string, err error) {
	if err != nil {
		fmt.Printf("%s %s\n%s %v\n", colorRed("Error:"), msg, colorMagenta("Detail:"), err)
	} else {
		fmt.Printf("%s %s\n", colorRed("Error:"), msg)
	}
}

// ErrorAndExit prints an error and terminates, mirroring
// tools/cli/util.go's ErrorAndExit.
func ErrorAndExit(msg string, err error) {
	printError(msg, err)
	osExit(1)
}

func getRequiredOption(c *cli.Context, name string) string {
	v := c.String(name)
	if v == "" {
		ErrorAndExit(fmt.Sprintf("option %s is required", name), nil)
	}
	return v
}

// eventColor picks a color for an event kind the way
// tools/cli/util.go's HistoryEventToString colors cadence event types by
// severity (completions green, failures and timeouts red, cancellations
// yellow).
func eventColor(kind engine.EventKind, outcome *engine.Outcome) string {
	if outcome != nil {
		switch outcome.Kind {
		case engine.OutcomeFailed, engine.OutcomeTimedOut:
			return colorRed(string(kind))
		case engine.OutcomeCanceled:
			return colorYellow(string(kind))
		case engine.OutcomeCompleted:
			return colorGreen(string(kind))
		}
	}
	switch kind {
	case engine.EventSignal:
		return colorMagenta(string(kind))
	case engine.EventProcessStarted:
		return colorGreen(string(kind))
	default:
		return string(kind)
	}
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	return table
}
