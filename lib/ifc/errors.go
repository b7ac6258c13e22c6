// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ifc

import (
	"errors"
	"fmt"
)

// ArchMismatchError reports that the container declares a different
// target architecture than the caller requires. Recoverable at the
// caller level (skip or report); nothing in the container is wrong.
type ArchMismatchError struct {
	// Declared is the architecture tag stored in the header.
	Declared Architecture

	// Expected is the architecture the caller asked for.
	Expected Architecture
}

func (e *ArchMismatchError) Error() string {
	return fmt.Sprintf("ifc: architecture mismatch: container declares %s, expected %s", e.Declared, e.Expected)
}

// IntegrityError reports that the stored content digest disagrees with
// the digest recomputed over the body. Both values are carried for
// diagnosis. The stored digest is never silently repaired on load;
// only ResetContentHash after an intentional mutation overwrites it.
type IntegrityError struct {
	// Stored is the digest recorded in the header.
	Stored Digest

	// Computed is the SHA-256 of the body as it is now.
	Computed Digest
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ifc: content hash mismatch: header records %s, body hashes to %s", e.Stored, e.Computed)
}

// MalformedError reports structural damage: a container too small for
// its fixed header, a bad signature, or a partition whose declared
// geometry runs past the end of the buffer.
type MalformedError struct {
	// Reason describes what is structurally wrong.
	Reason string
}

func (e *MalformedError) Error() string {
	return "ifc: malformed container: " + e.Reason
}

// malformedf builds a MalformedError from a format string.
func malformedf(format string, args ...any) error {
	return &MalformedError{Reason: fmt.Sprintf(format, args...)}
}

// UnresolvedReferenceError reports a string reference that cannot be
// resolved: it points outside the string table, or the table ends
// before a terminating NUL.
type UnresolvedReferenceError struct {
	// Reference is the offending text offset.
	Reference TextOffset

	// TableSize is the string table size in bytes, for context.
	TableSize uint32
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("ifc: unresolved string reference %d (string table is %d bytes)", e.Reference, e.TableSize)
}

// CapacityError reports a SetString value that does not fit in the
// storage backing the referenced string. In-place editing never
// reallocates, so a longer value would overrun into neighboring data;
// the write is refused instead.
type CapacityError struct {
	// Reference is the string slot that was being overwritten.
	Reference TextOffset

	// Capacity is the byte length of the stored string.
	Capacity int

	// Requested is the byte length of the rejected value.
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("ifc: string reference %d holds %d bytes, cannot store %d in place", e.Reference, e.Capacity, e.Requested)
}

// IsArchMismatch reports whether err is an architecture mismatch.
func IsArchMismatch(err error) bool {
	var archErr *ArchMismatchError
	return errors.As(err, &archErr)
}

// IsIntegrityFailure reports whether err is a content hash mismatch.
func IsIntegrityFailure(err error) bool {
	var integrityErr *IntegrityError
	return errors.As(err, &integrityErr)
}

// IsMalformed reports whether err is structural damage to the
// container.
func IsMalformed(err error) bool {
	var malformedErr *MalformedError
	return errors.As(err, &malformedErr)
}

// IsUnresolvedReference reports whether err is a string reference
// that could not be resolved.
func IsUnresolvedReference(err error) bool {
	var refErr *UnresolvedReferenceError
	return errors.As(err, &refErr)
}
