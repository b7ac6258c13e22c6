// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ifc

import (
	"bytes"
	"encoding/binary"
)

// File interprets a byte buffer as an IFC container. The buffer is
// shared, not copied: mutations made through SetString and
// ResetContentHash write straight into the caller's bytes, which is
// what makes in-place editing of a memory-mapped file work.
//
// A File is created once per container, mutated at most once (zero or
// more string rewrites followed by one digest reset), and discarded.
// It is not safe for concurrent use.
type File struct {
	data []byte
}

// ValidationPolicy controls what Validate checks.
type ValidationPolicy struct {
	// Architecture is the tag the container must declare. ArchUnknown
	// accepts any architecture.
	Architecture Architecture

	// IntegrityCheck recomputes the SHA-256 of the body and compares
	// it byte-for-byte against the stored digest.
	IntegrityCheck bool
}

// Open wraps data as a container. It checks only that the buffer can
// hold the fixed header; signature, architecture, and digest checks
// are Validate's job.
func Open(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, malformedf("container is %d bytes, need at least %d for the header", len(data), headerSize)
	}
	return &File{data: data}, nil
}

// Validate checks the container against the policy: the file
// signature, the declared architecture, and (when the policy asks for
// it) the content digest. It must pass before any further reads are
// trusted.
func (f *File) Validate(policy ValidationPolicy) error {
	if !bytes.Equal(f.data[:SignatureSize], signature[:]) {
		return malformedf("bad file signature (not an IFC container)")
	}
	if policy.Architecture != ArchUnknown {
		if declared := f.Architecture(); declared != policy.Architecture {
			return &ArchMismatchError{Declared: declared, Expected: policy.Architecture}
		}
	}
	if policy.IntegrityCheck {
		if err := f.VerifyContentIntegrity(); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the container size in bytes.
func (f *File) Size() int {
	return len(f.data)
}

// FormatVersion returns the declared format version.
func (f *File) FormatVersion() Version {
	return Version{Major: f.data[offVersionMajor], Minor: f.data[offVersionMinor]}
}

// Abi returns the declared ABI tag, uninterpreted.
func (f *File) Abi() uint8 {
	return f.data[offAbi]
}

// Architecture returns the declared target architecture.
func (f *File) Architecture() Architecture {
	return Architecture(f.data[offArch])
}

// Dialect returns the declared language dialect as the __cplusplus
// value the unit was compiled under, e.g. 202002.
func (f *File) Dialect() uint32 {
	return f.uint32At(offDialect)
}

// Unit returns the raw unit designator word. The sort/index split is
// not interpreted by this tool.
func (f *File) Unit() uint32 {
	return f.uint32At(offUnit)
}

// Internal reports whether the header flags the unit's partitions as
// internal.
func (f *File) Internal() bool {
	return f.data[offInternal] != 0
}

// SrcPath resolves the primary source path recorded in the header.
// Returns the empty string for the zero sentinel.
func (f *File) SrcPath() (string, error) {
	ref := TextOffset(f.uint32At(offSrcPath))
	if ref == 0 {
		return "", nil
	}
	return f.GetString(ref)
}

// PartitionCount returns the declared number of partition table
// entries.
func (f *File) PartitionCount() uint32 {
	return f.uint32At(offPartitionCount)
}

// Partitions decodes the partition table. The table offset and count
// are trusted as declared; the only check is that the table fits in
// the buffer.
func (f *File) Partitions() ([]Partition, error) {
	tableOffset := uint64(f.uint32At(offTOC))
	count := uint64(f.PartitionCount())

	end := tableOffset + count*partitionEntrySize
	if end > uint64(len(f.data)) {
		return nil, malformedf("partition table [%d, %d) exceeds container size %d", tableOffset, end, len(f.data))
	}

	partitions := make([]Partition, count)
	for i := range partitions {
		entry := tableOffset + uint64(i)*partitionEntrySize
		partitions[i] = Partition{
			Name:        TextOffset(f.uint32At(int(entry))),
			Offset:      f.uint32At(int(entry) + 4),
			Cardinality: f.uint32At(int(entry) + 8),
			EntrySize:   f.uint32At(int(entry) + 12),
		}
	}
	return partitions, nil
}

// Partition scans the partition table for an entry with the given
// name. Absence is not an error: callers treat a missing partition as
// "nothing to do" and continue. A name reference that cannot be
// resolved during the scan is an error, since the table itself is
// then unusable.
func (f *File) Partition(name string) (Partition, bool, error) {
	partitions, err := f.Partitions()
	if err != nil {
		return Partition{}, false, err
	}
	for _, partition := range partitions {
		entryName, err := f.GetString(partition.Name)
		if err != nil {
			return Partition{}, false, err
		}
		if entryName == name {
			return partition, true, nil
		}
	}
	return Partition{}, false, nil
}

// SourceFiles decodes the record array of a source-file partition.
// The declared entry size must match the 8-byte record layout; a
// container declaring anything else is refused rather than misread.
func (f *File) SourceFiles(partition Partition) ([]SourceFile, error) {
	if partition.EntrySize != sourceFileRecordSize {
		return nil, malformedf("source-file partition declares %d-byte entries, records are %d bytes", partition.EntrySize, sourceFileRecordSize)
	}

	start := uint64(partition.Offset)
	end := start + uint64(partition.Cardinality)*sourceFileRecordSize
	if end > uint64(len(f.data)) {
		return nil, malformedf("partition records [%d, %d) exceed container size %d", start, end, len(f.data))
	}

	records := make([]SourceFile, partition.Cardinality)
	for i := range records {
		record := start + uint64(i)*sourceFileRecordSize
		records[i] = SourceFile{
			Name:         TextOffset(f.uint32At(int(record))),
			IncludeGuard: TextOffset(f.uint32At(int(record) + 4)),
		}
	}
	return records, nil
}

// GetString resolves a string table reference to its text.
func (f *File) GetString(ref TextOffset) (string, error) {
	slot, capacity, err := f.stringSlot(ref)
	if err != nil {
		return "", err
	}
	return string(f.data[slot : slot+capacity]), nil
}

// SetString overwrites the storage backing the referenced string in
// place. The capacity of the slot is the stored string's byte length;
// a longer value is refused with a CapacityError, since growing the
// slot would overrun neighboring data. Shorter values are written and
// the remainder of the slot is zeroed, so the slot stays
// NUL-terminated at its new length.
func (f *File) SetString(ref TextOffset, value string) error {
	slot, capacity, err := f.stringSlot(ref)
	if err != nil {
		return err
	}
	if len(value) > capacity {
		return &CapacityError{Reference: ref, Capacity: capacity, Requested: len(value)}
	}

	span := f.data[slot : slot+capacity]
	copy(span, value)
	for i := len(value); i < capacity; i++ {
		span[i] = 0
	}
	return nil
}

// stringSlot locates the storage of a string reference: its absolute
// start offset and its capacity (byte length up to the terminating
// NUL).
func (f *File) stringSlot(ref TextOffset) (start, capacity int, err error) {
	tableOffset := uint64(f.uint32At(offStringTable))
	tableSize := f.uint32At(offStringTableLen)

	tableEnd := tableOffset + uint64(tableSize)
	if tableEnd > uint64(len(f.data)) {
		return 0, 0, malformedf("string table [%d, %d) exceeds container size %d", tableOffset, tableEnd, len(f.data))
	}
	if uint32(ref) >= tableSize {
		return 0, 0, &UnresolvedReferenceError{Reference: ref, TableSize: tableSize}
	}

	table := f.data[tableOffset:tableEnd]
	terminator := bytes.IndexByte(table[ref:], 0)
	if terminator < 0 {
		return 0, 0, &UnresolvedReferenceError{Reference: ref, TableSize: tableSize}
	}
	return int(tableOffset) + int(ref), terminator, nil
}

// uint32At decodes the little-endian uint32 at the given offset.
func (f *File) uint32At(offset int) uint32 {
	return binary.LittleEndian.Uint32(f.data[offset : offset+4])
}
