// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for ifcpatch.
//
// Configuration is loaded from a single file specified by either the
// IFCPATCH_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks, no ~/.config
// discovery, and no automatic file search. The file itself is
// optional: [Default] describes the standard enlistment layout, and a
// config file exists only to override it for non-standard layouts.
//
// No environment variables override config values and no variable
// expansion is performed. The rewrite fragments are literal byte
// strings matched against paths stored inside containers, which use
// backslash separators regardless of the host platform; expanding
// host paths into them would corrupt the rule.
//
// Key exports:
//
//   - [Config] -- master struct with Rewrite and Validation sections
//   - [Default] -- returns the built-in standard-layout Config
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Rule] -- converts the rewrite section to a rewrite.Rule
package config
