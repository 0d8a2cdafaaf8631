// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the bridge's CBOR encoding configuration.
//
// The bridge speaks JSON on its external interfaces: the line protocol
// on stdin/stdout and the Jupyter wire format. CBOR is used only for
// internal artifacts, currently the session transcript written by
// lib/transcript. Keeping the encoder configuration here means every
// record is encoded identically with Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items.
//
//	encoder := codec.NewEncoder(file)
//	decoder := codec.NewDecoder(file)
//
// Types tagged `cbor` are only ever serialized as CBOR.
package codec
