// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the ifcpatch CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in cmd/ifcpatch and
// dispatched via [Command.Execute], which handles flag parsing, subcommand
// routing, and structured help output with examples. A root command with
// both subcommands and a Run function treats unmatched first arguments as
// positionals, so "ifcpatch <file>..." keeps working next to the named
// subcommands.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Command flags are declared as tagged struct fields and bound with
// [FlagsFromParams]; see params.go. [JSONOutput] is the embeddable
// --json support used by commands with machine-readable output, and
// [ExitError] carries a non-zero exit code from commands whose failure
// output is their own (verify's checklist, help text).
package cli
