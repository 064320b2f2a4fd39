// Command imgray converts an image file to grayscale.
//
// Usage:
//
//	imgray SRC DST [flags]
//
// The host path runs by default; -g selects the device path. Flags may also
// be set through IMGRAY_* environment variables or a config file given with
// --config. An interrupt during conversion ends the run with exit status 130.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/gogpu/imgray"
	"github.com/gogpu/imgray/internal/interrupt"
)

// Exit statuses.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, src := interrupt.NewSource(context.Background())
	stop := src.Notify(os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(src)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, imgray.ErrCancelled):
		return exitInterrupted
	default:
		fmt.Fprintf(stderr, "imgray: %v\n", err)
		return exitFailure
	}
}
