// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitUsage is the exit status for command-line mistakes.
const ExitUsage = 2

// usageError marks an error caused by how the binary was invoked.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// Usage marks err as a command-line mistake, so Fatal exits with
// ExitUsage instead of 1. Usage(nil) returns nil.
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

// ExitCode returns the status Fatal would exit with for err.
func ExitCode(err error) int {
	var usage *usageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	return 1
}

// Fatal writes "error: err" to stderr and exits with ExitCode(err).
// main() calls it with the error from run().
func Fatal(err error) {
	report(os.Stderr, err)
	os.Exit(ExitCode(err))
}

func report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
