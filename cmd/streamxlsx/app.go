// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeError is the exit code for any flag-parse or runtime error.
	ExitCodeError
)

// ErrUnsupportedSource indicates a SOURCE argument this CLI doesn't
// know how to dispatch (e.g. an s3:// URI; no object-store Source is
// wired into this binary).
var ErrUnsupportedSource = errors.New("unsupported source")

func init() {
	// Set the HelpFlag to a random name so that it isn't used. `cli` handles
	// the flag with the root command such that it takes a command name argument
	// but we don't use commands.
	//
	// This is done because `streamxlsx --help foo` will display a
	// "command foo not found" error instead of the help.
	//
	// This flag is hidden by the help output.
	// See: github.com/urfave/cli/issues/1809
	cli.HelpFlag = &cli.BoolFlag{
		// NOTE: Use a random name no one would guess.
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// must checks the error and panics if not nil.
func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

func newApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Stream rows out of an XLSX workbook as CSV.",
		Description: strings.Join([]string{
			"streamxlsx reads an XLSX archive under a bounded memory budget",
			"and writes one worksheet's rows as CSV.",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sheet-name",
				Usage: "worksheet to read; defaults to xl/worksheets/sheet1.xml",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "write CSV to PATH instead of stdout",
			},
			&cli.BoolFlag{
				Name:               "verbose",
				Usage:              "print cell decode warnings and their count to stderr",
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "list-sheets",
				Usage:              "print the workbook's sheets and exit",
				DisableDefaultText: true,
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"v"},
				DisableDefaultText: true,
			},
		},
		ArgsUsage:       "SOURCE",
		Copyright:       "Google LLC",
		HideHelp:        true,
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			if c.Bool("help") {
				check(cli.ShowAppHelp(c))
				return nil
			}

			if c.Bool("version") {
				return printVersion(c)
			}

			args := c.Args().Slice()
			if len(args) != 1 {
				return fmt.Errorf("%w: expected exactly one SOURCE argument", ErrUnsupportedSource)
			}

			run := &run{
				source:     args[0],
				sheetName:  c.String("sheet-name"),
				output:     c.String("output"),
				verbose:    c.Bool("verbose"),
				listSheets: c.Bool("list-sheets"),
				stdout:     c.App.Writer,
				stderr:     c.App.ErrWriter,
			}
			return run.Run(c.Context)
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}

			_ = must(fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", c.App.Name, err))
			cli.OsExiter(ExitCodeError)
		},
	}
}
