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
	"github.com/urfave/cli"
)

// NewApp builds the wfctl command tree, mirroring tools/cli's newAdmin*
// grouping of related subcommands under one parent command.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "wfctl"
	app.Usage = "inspect and drive a workflow-engine backend"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  FlagConfig,
			Usage: "path to a wfctl connection file (defaults to an in-memory backend)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:        "process",
			Aliases:     []string{"p"},
			Usage:       "inspect and drive processes",
			Subcommands: newProcessCommands(),
		},
	}
	return app
}
