// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ifc reads and edits compiled C++ module interface files in
// the IFC binary format, in place.
//
// # Container layout
//
// An IFC container is little-endian throughout:
//
//	[0, 4)    file signature 54 51 45 1A
//	[4, 36)   SHA-256 digest of the hashed body
//	[36, EOF) hashed body: fixed header fields, then payload
//
// The hashed body starts with the remaining header fields: format
// version, ABI, architecture, dialect, the string table's absolute
// offset and size, the unit designator, header string references, the
// partition table's absolute offset and entry count, and the internal
// flag. Everything after the signature and digest is covered by the
// digest, so any edit to the body invalidates the stored digest until
// ResetContentHash is called.
//
// Payload data is organized into partitions. The partition table is
// an array of 16-byte entries, each naming a typed record array by
// string reference and locating it by absolute offset, record count,
// and record size. This package decodes only the partition this tool
// edits, "name.source-file", whose 8-byte records pair a path string
// reference with an include guard reference.
//
// Strings live in a single string table region. A TextOffset is an
// index into that region; the text runs to the first NUL. Offset zero
// is reserved as a null sentinel and never resolved by callers.
//
// # Editing discipline
//
// File wraps the caller's buffer without copying, so it composes with
// memory-mapped files: SetString overwrites string storage in place
// (never growing a slot past its stored length) and ResetContentHash
// rewrites the header digest. Offsets and sizes declared by the
// container are trusted as given; the package checks them against the
// buffer length and nothing else, refusing with MalformedError when a
// declared region runs past the end of the file.
//
// The usual sequence is Open, Validate with the policy the caller
// needs, read and rewrite strings, then ResetContentHash once if
// anything in the body may have changed.
package ifc
