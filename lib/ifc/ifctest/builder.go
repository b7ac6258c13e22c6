// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ifctest builds synthetic IFC container images for tests.
//
// The builder encodes the container layout on its own rather than
// reusing the ifc package's writer-side helpers, so that a decoding
// bug cannot be masked by the same bug on the encoding side.
package ifctest

import (
	"crypto/sha256"
	"encoding/binary"
)

// Container describes a synthetic container to build. The zero value
// plus a Build call yields a minimal valid x64 container with an
// empty partition table.
type Container struct {
	// Arch is the declared architecture. Zero (unknown) defaults to
	// x64, the common case in fixtures.
	Arch uint8

	// Dialect is the declared language dialect. Zero defaults to
	// 202002.
	Dialect uint32

	// Paths become the records of the name.source-file partition, in
	// order. An empty path produces a record whose name is the null
	// sentinel. Guards, when present, pairs an include guard string
	// with the path at the same index; missing or empty entries get
	// the null sentinel.
	Paths  []string
	Guards []string

	// OmitSourcePartition drops the name.source-file entry from the
	// partition table entirely. EmptySourcePartition keeps the entry
	// but declares zero records.
	OmitSourcePartition  bool
	EmptySourcePartition bool

	// DecoyPartitions adds named partitions with no records ahead of
	// the source-file entry, so lookups have to scan past them.
	DecoyPartitions []string

	// CorruptDigest flips bits in the stored digest after sealing,
	// so the container fails integrity verification.
	CorruptDigest bool
}

// Layout constants, written out independently of the ifc package.
const (
	headerSize         = 73
	partitionEntrySize = 16
	sourceRecordSize   = 8

	offVersionMajor   = 36
	offVersionMinor   = 37
	offAbi            = 38
	offArch           = 39
	offDialect        = 40
	offStringTable    = 44
	offStringTableLen = 48
	offUnit           = 52
	offSrcPath        = 56
	offGlobalScope    = 60
	offTOC            = 64
	offPartitionCount = 68
	offInternal       = 72
)

var signature = []byte{0x54, 0x51, 0x45, 0x1A}

// Build assembles the container image: header, source-file records,
// partition table, string table, in that order, with a correct body
// digest unless CorruptDigest asks otherwise.
func (c Container) Build() []byte {
	arch := c.Arch
	if arch == 0 {
		arch = 2 // x64
	}
	dialect := c.Dialect
	if dialect == 0 {
		dialect = 202002
	}

	table := newStringTable()

	pathRefs := make([]uint32, len(c.Paths))
	guardRefs := make([]uint32, len(c.Paths))
	for i, path := range c.Paths {
		if path != "" {
			pathRefs[i] = table.intern(path)
		}
		if i < len(c.Guards) && c.Guards[i] != "" {
			guardRefs[i] = table.intern(c.Guards[i])
		}
	}

	type entry struct {
		name        uint32
		offset      uint32
		cardinality uint32
		entrySize   uint32
	}
	var entries []entry
	for _, name := range c.DecoyPartitions {
		entries = append(entries, entry{name: table.intern(name), entrySize: 16})
	}

	recordsOffset := headerSize
	recordsSize := 0
	if !c.OmitSourcePartition {
		cardinality := uint32(len(c.Paths))
		if c.EmptySourcePartition {
			cardinality = 0
		}
		recordsSize = int(cardinality) * sourceRecordSize
		entries = append(entries, entry{
			name:        table.intern("name.source-file"),
			offset:      uint32(recordsOffset),
			cardinality: cardinality,
			entrySize:   sourceRecordSize,
		})
	}

	tocOffset := recordsOffset + recordsSize
	tableOffset := tocOffset + len(entries)*partitionEntrySize

	image := make([]byte, tableOffset+len(table.data))

	copy(image, signature)
	image[offVersionMajor] = 0
	image[offVersionMinor] = 43
	image[offAbi] = 0
	image[offArch] = arch
	put32(image, offDialect, dialect)
	put32(image, offStringTable, uint32(tableOffset))
	put32(image, offStringTableLen, uint32(len(table.data)))
	put32(image, offUnit, 0)
	if len(pathRefs) > 0 {
		put32(image, offSrcPath, pathRefs[0])
	}
	put32(image, offGlobalScope, 0)
	put32(image, offTOC, uint32(tocOffset))
	put32(image, offPartitionCount, uint32(len(entries)))
	image[offInternal] = 0

	if !c.OmitSourcePartition && !c.EmptySourcePartition {
		for i := range pathRefs {
			record := recordsOffset + i*sourceRecordSize
			put32(image, record, pathRefs[i])
			put32(image, record+4, guardRefs[i])
		}
	}

	for i, e := range entries {
		at := tocOffset + i*partitionEntrySize
		put32(image, at, e.name)
		put32(image, at+4, e.offset)
		put32(image, at+8, e.cardinality)
		put32(image, at+12, e.entrySize)
	}

	copy(image[tableOffset:], table.data)

	digest := sha256.Sum256(image[36:])
	copy(image[4:36], digest[:])
	if c.CorruptDigest {
		image[4] ^= 0xFF
	}
	return image
}

// stringTable accumulates NUL-terminated strings. Offset zero holds
// the null sentinel, so real strings start at 1.
type stringTable struct {
	data    []byte
	offsets map[string]uint32
}

func newStringTable() *stringTable {
	return &stringTable{data: []byte{0}, offsets: make(map[string]uint32)}
}

func (t *stringTable) intern(s string) uint32 {
	if offset, ok := t.offsets[s]; ok {
		return offset
	}
	offset := uint32(len(t.data))
	t.data = append(t.data, s...)
	t.data = append(t.data, 0)
	t.offsets[s] = offset
	return offset
}

func put32(buffer []byte, offset int, value uint32) {
	binary.LittleEndian.PutUint32(buffer[offset:], value)
}
