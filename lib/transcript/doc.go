// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transcript records a bridge session: every command line
// read from the client and every event line written back, with the
// time it crossed the boundary. Transcripts are a debugging aid for
// reproducing client/kernel interleavings; the bridge works the same
// with or without one.
//
// A transcript is a stream of CBOR items: a header naming the format
// and its version, then one [Record] per line. The file
// extension selects compression: ".zst" for zstd, ".lz4" for the LZ4
// frame format, anything else for an uncompressed stream. Lines are
// stored as the exact bytes exchanged, so a transcript can be replayed
// into a bridge verbatim.
package transcript
