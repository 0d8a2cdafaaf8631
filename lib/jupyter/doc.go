// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package jupyter implements the parts of the Jupyter messaging
// protocol that a kernel client needs: the message model, the signed
// multipart wire format, connection files, and kernelspec discovery.
//
// A kernel exposes four channels the bridge talks to. Shell carries
// execute and inspect requests and their replies. Control carries
// priority requests (shutdown, interrupt, and inspect when asked to
// bypass shell). IOPub broadcasts outputs and busy/idle status to
// every subscriber. Stdin carries the kernel's input_request messages
// and the client's input_reply answers. Shell, control, and stdin are
// DEALER sockets sharing one identity so the kernel can route stdin
// requests back to the client that issued the execute.
//
// On the wire a message is a sequence of frames:
//
//	[identities...] "<IDS|MSG>" signature header parent_header metadata content [buffers...]
//
// The signature is the lowercase hex HMAC-SHA256 of the four JSON
// frames, keyed with the connection file's key. An empty key disables
// signing. [Session] owns the key and produces and verifies frames.
//
// Kernelspecs are kernel.json files under "kernels/<name>/" in each
// Jupyter data directory. They are parsed with comments and trailing
// commas tolerated, since hand-edited specs frequently carry both.
package jupyter
