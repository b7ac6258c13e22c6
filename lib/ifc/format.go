// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ifc

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// SourceFilePartition is the name of the partition holding the dense
// array of source-file records whose paths this tool rewrites.
const SourceFilePartition = "name.source-file"

// File signature: the four bytes every IFC file starts with. The
// trailing 0x1A (DOS EOF) stops accidental text-mode printing of the
// binary content, the same trick the ZIP and PNG signatures use.
var signature = [4]byte{0x54, 0x51, 0x45, 0x1A}

// Fixed layout of the IFC header. The stored content digest sits
// immediately after the signature; everything from contentStart to the
// end of the file is the hashed body. All multi-byte fields are
// little-endian (the format is produced by MSVC on little-endian
// targets, and the on-disk encoding is defined to match).
const (
	// SignatureSize is the byte length of the file signature.
	SignatureSize = 4

	// DigestSize is the byte length of the stored SHA-256 content
	// digest.
	DigestSize = 32

	// digestStart is the file offset of the stored content digest.
	digestStart = SignatureSize

	// contentStart is the file offset where the hashed body begins:
	// 4 signature bytes + 32 digest bytes.
	contentStart = digestStart + DigestSize

	// Header field offsets within the file. The header is a packed
	// little-endian struct starting right after the stored digest.
	offVersionMajor   = contentStart + 0  // u8
	offVersionMinor   = contentStart + 1  // u8
	offAbi            = contentStart + 2  // u8
	offArch           = contentStart + 3  // u8
	offDialect        = contentStart + 4  // u32: __cplusplus value, e.g. 202002
	offStringTable    = contentStart + 8  // u32: absolute offset of the string table
	offStringTableLen = contentStart + 12 // u32: string table size in bytes
	offUnit           = contentStart + 16 // u32: unit sort and index, kept opaque
	offSrcPath        = contentStart + 20 // u32: text offset of the primary source path
	offGlobalScope    = contentStart + 24 // u32: scope index, kept opaque
	offTOC            = contentStart + 28 // u32: absolute offset of the partition table
	offPartitionCount = contentStart + 32 // u32
	offInternal       = contentStart + 36 // u8 boolean

	// headerSize is the minimum byte length of a well-formed container:
	// signature + digest + packed header fields.
	headerSize = offInternal + 1

	// partitionEntrySize is the on-disk size of one partition table
	// entry: name text offset, payload offset, cardinality, entry size.
	partitionEntrySize = 16

	// sourceFileRecordSize is the on-disk size of one source-file
	// record: name text offset + include-guard text offset.
	sourceFileRecordSize = 8
)

// Architecture is the target architecture tag declared in the header.
type Architecture uint8

// Architecture tags defined by the IFC format. ArchUnknown doubles as
// a wildcard when used as an expected architecture in validation.
const (
	ArchUnknown        Architecture = 0
	ArchX86            Architecture = 1
	ArchX64            Architecture = 2
	ArchARM32          Architecture = 3
	ArchARM64          Architecture = 4
	ArchHybridX86ARM64 Architecture = 5
	ArchARM64EC        Architecture = 6
)

// archNames maps architecture tags to their canonical lower-case
// names, which are also the spellings accepted by ParseArchitecture.
var archNames = map[Architecture]string{
	ArchUnknown:        "unknown",
	ArchX86:            "x86",
	ArchX64:            "x64",
	ArchARM32:          "arm32",
	ArchARM64:          "arm64",
	ArchHybridX86ARM64: "hybridx86arm64",
	ArchARM64EC:        "arm64ec",
}

// String returns the canonical name of the architecture tag, or a
// numeric form for tags this package does not know about.
func (a Architecture) String() string {
	if name, ok := archNames[a]; ok {
		return name
	}
	return fmt.Sprintf("architecture(%d)", uint8(a))
}

// ParseArchitecture converts a case-insensitive architecture name to
// its tag. Returns an error naming the accepted spellings when the
// input matches none of them.
func ParseArchitecture(name string) (Architecture, error) {
	lower := strings.ToLower(name)
	for arch, archName := range archNames {
		if archName == lower {
			return arch, nil
		}
	}
	return ArchUnknown, fmt.Errorf("unknown architecture %q (expected one of: unknown, x86, x64, arm32, arm64, hybridx86arm64, arm64ec)", name)
}

// Digest is a 32-byte SHA-256 content digest.
type Digest [DigestSize]byte

// String returns the canonical hex encoding of the digest, the format
// used in diagnostics and JSON reports.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// TextOffset is a reference into the container's string table,
// measured in bytes from the start of the table. Offset 0 is the
// conventional "no string" sentinel: the table starts with a NUL byte
// so that resolving 0 yields the empty string.
type TextOffset uint32

// Version is the format version declared in the header.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the dotted form, e.g. "0.43".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Partition is one row of the partition table: a named, offset-
// addressed region of the body holding Cardinality records of
// EntrySize bytes each. Entries are read-only; offsets and counts are
// trusted as declared, subject only to buffer-length bounds checks at
// decode time.
type Partition struct {
	// Name references the partition's name in the string table.
	Name TextOffset

	// Offset is the absolute byte offset of the partition payload.
	Offset uint32

	// Cardinality is the number of records in the payload.
	Cardinality uint32

	// EntrySize is the declared byte size of one record.
	EntrySize uint32
}

// SourceFile is one record of the "name.source-file" partition. A
// zero Name is the "no path" sentinel; such records carry nothing to
// rewrite but still count as visited for the digest-reset rule.
type SourceFile struct {
	// Name references the source file path in the string table.
	Name TextOffset

	// IncludeGuard references the include guard macro, when the
	// translation unit recorded one. Not interpreted by this tool.
	IncludeGuard TextOffset
}
