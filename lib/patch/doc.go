// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package patch drives the per-file patching sequence: map the
// container, validate it, rewrite the source-file partition's path
// records with the configured rule, reset the content digest, and
// flush. It is the composition layer over lib/mapped, lib/ifc, and
// lib/rewrite; the packages below it know nothing about files or
// batches.
//
// Processing is strictly sequential and per-file: a failure in one
// container never leaves another half-patched, and there is no state
// carried between files. A container missing the source-file
// partition is a success with nothing to do. A container that fails
// validation is left byte-for-byte untouched, which keeps a corrupted
// input diagnosable.
//
// The digest rule follows from in-place editing: once any record of
// the partition has been visited the stored digest is recomputed,
// even when no path matched the rule. Rewrites preserve string
// length, so a patched container is structurally identical to its
// input with only string bytes and the digest changed.
//
// Key exports:
//
//   - [Options] -- rule, validation policy, dry-run and batch knobs
//   - [ProcessFile] -- patch one container
//   - [ProcessFiles] -- patch a batch, abort-on-first-failure or
//     keep-going
//   - [FileResult] -- per-file outcome, JSON-ready for --json output
package patch
