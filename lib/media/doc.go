// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package media turns rich kernel output into what the client
// protocol can carry. [Classify] picks the representation to report
// from a MIME bundle; [Store] writes image representations to files
// named by their content hash so the client receives a path instead
// of inline bytes.
//
// Representation priority follows what a terminal client can best
// display: raster images (PNG, then JPEG), then SVG, then Markdown,
// then plain text. Everything else in the bundle is ignored.
package media
