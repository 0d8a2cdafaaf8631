// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package main

import (
	"io"
	"log/slog"
	"os"
)

func openInput(logger *slog.Logger) io.Reader {
	return os.Stdin
}
