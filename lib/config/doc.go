// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the kernel-bridge YAML file.
//
// The file is named by --config ([LoadFile]) or by the
// KERNELBRIDGE_CONFIG environment variable ([Load]). Nothing is
// searched for. Without either the bridge runs on [Default], and keys
// absent from a file keep their default values.
//
// Path fields (kernel search paths, media directory, transcript path)
// expand ${VAR} and ${VAR:-fallback} after parsing. Other fields are
// taken literally, and no environment variable overrides a value the
// file sets.
//
// [Config.Validate] rejects values the bridge cannot run with, such as
// an unknown log level or a negative reply grace. [Config.EnsurePaths]
// creates the directories the bridge writes into.
package config
