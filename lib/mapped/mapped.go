// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

// Package mapped memory-maps regular files for in-place editing.
//
// A mapped.File is a byte-addressable view of a file's contents:
// reads and writes on the Bytes slice go straight to the page cache,
// and a Sync call flushes dirty pages to storage. This is the I/O
// substrate for container editing, where a patch touches a handful of
// bytes scattered through a file that can be tens of megabytes.
package mapped

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

// Mode selects the access mode of a mapping.
type Mode int

const (
	// ReadOnly maps the file for reading. Writing through Bytes
	// faults.
	ReadOnly Mode = iota

	// ReadWrite maps the file shared for reading and writing;
	// mutations reach the file once synced.
	ReadWrite
)

// File is a memory-mapped regular file.
type File struct {
	fd       int
	data     []byte
	writable bool
}

// Open maps the file at path at its current size. The file must be a
// non-empty regular file; an empty file cannot be mapped and could
// not hold a container anyway.
func Open(path string, mode Mode) (*File, error) {
	flags := unix.O_RDONLY
	if mode == ReadWrite {
		flags = unix.O_RDWR
	}
	fd, err := unix.Open(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stating %s: %w", path, err)
	}
	if stat.Mode&unix.S_IFMT != unix.S_IFREG {
		unix.Close(fd)
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	if stat.Size == 0 {
		unix.Close(fd)
		return nil, fmt.Errorf("%s is empty", path)
	}
	if stat.Size > math.MaxInt {
		unix.Close(fd)
		return nil, fmt.Errorf("%s is %d bytes, too large to map", path, stat.Size)
	}

	prot := unix.PROT_READ
	if mode == ReadWrite {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(fd, 0, int(stat.Size), prot, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("memory-mapping %s: %w", path, err)
	}

	return &File{
		fd:       fd,
		data:     data,
		writable: mode == ReadWrite,
	}, nil
}

// Bytes returns the mapped contents. The slice is valid until Close;
// for a ReadWrite mapping, stores into it modify the file.
func (f *File) Bytes() []byte {
	return f.data
}

// Size returns the mapped length in bytes.
func (f *File) Size() int64 {
	return int64(len(f.data))
}

// Sync flushes modified pages to the underlying storage. A read-only
// mapping has nothing to flush.
func (f *File) Sync() error {
	if !f.writable {
		return nil
	}
	if err := unix.Msync(f.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("syncing mapping: %w", err)
	}
	return nil
}

// Close unmaps the region and closes the file descriptor.
func (f *File) Close() error {
	var firstErr error
	if err := unix.Munmap(f.data); err != nil {
		firstErr = fmt.Errorf("unmapping file: %w", err)
	}
	if err := unix.Close(f.fd); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing file descriptor: %w", err)
	}
	f.data = nil
	f.fd = -1
	return firstErr
}
