// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdflinks CLI. It lists the PDF
// links on one web page, writes them to a file, and optionally downloads
// them.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command tree and maps the outcome to an exit code:
// 0 on normal completion, 1 on any fatal error.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args when given nil.
		args = []string{}
	}
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		newLogger(stderr, false).Error(err)
		return 1
	}
	return 0
}
