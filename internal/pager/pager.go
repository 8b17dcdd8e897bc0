// Package pager threads a rendered line stream into a scrollable shell
// pager subprocess, tolerating the subprocess exiting early (the user
// quitting the pager) the same way a broken network write is tolerated
// on a disconnected peer.
package pager

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/exec"
	"syscall"
)

// Options configures the pager subprocess. Args defaults to a
// `less -R -S -# 8` invocation: raw ANSI passthrough, no line-wrap, an
// 8-column horizontal scroll step.
type Options struct {
	Command string
	Args    []string
	Stdout  *os.File
}

// DefaultOptions is the invocation used when a caller doesn't supply
// its own.
var DefaultOptions = Options{
	Command: "less",
	Args:    []string{"-R", "-S", "-#", "8"},
}

// Pipe writes every line in lines to a pager subprocess's stdin,
// newline-terminated, tolerating the subprocess exiting early (the
// user quit the pager) by swallowing the broken-pipe error.
func Pipe(opts Options, lines iter.Seq[string]) error {
	if opts.Command == "" {
		opts = DefaultOptions
	}

	cmd := exec.Command(opts.Command, opts.Args...)
	cmd.Stdout = opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("pager: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("pager: starting %s: %w", opts.Command, err)
	}

	for line := range lines {
		if _, err := io.WriteString(stdin, line+"\n"); err != nil {
			if isBrokenPipe(err) {
				break
			}
			stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("pager: writing: %w", err)
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		// The pager's own non-zero exit (e.g. SIGINT from Ctrl+C) is not
		// this package's concern.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return fmt.Errorf("pager: waiting: %w", err)
	}
	return nil
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}
