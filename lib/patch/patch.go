// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

package patch

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/bureau-foundation/ifcpatch/lib/ifc"
	"github.com/bureau-foundation/ifcpatch/lib/mapped"
	"github.com/bureau-foundation/ifcpatch/lib/rewrite"
)

// Options controls how containers are patched.
type Options struct {
	// Rule is the path substitution to apply to every source-file
	// record.
	Rule rewrite.Rule

	// Architecture restricts patching to containers declaring this
	// architecture. ArchUnknown accepts any.
	Architecture ifc.Architecture

	// IntegrityCheck verifies the stored digest before patching. A
	// container that fails is left untouched.
	IntegrityCheck bool

	// DryRun computes and reports everything a real run would, on a
	// private copy of the container, and writes nothing back.
	DryRun bool

	// KeepGoing continues with the remaining files after a failure
	// instead of aborting the batch.
	KeepGoing bool

	// Logger receives per-file progress at debug level. Nil
	// discards.
	Logger *slog.Logger
}

// FileResult reports what happened to one container.
type FileResult struct {
	// Path is the input file path as given.
	Path string `json:"path"`

	// PartitionFound reports whether the container has a
	// source-file partition at all.
	PartitionFound bool `json:"partition_found"`

	// Records is the number of source-file records in the
	// partition.
	Records int `json:"records"`

	// Rewritten is the number of records whose path matched the
	// rule and was overwritten.
	Rewritten int `json:"rewritten"`

	// DigestReset reports whether the content digest was
	// recomputed. Set whenever at least one record was visited,
	// even if no path matched.
	DigestReset bool `json:"digest_reset"`

	// Error is the failure message for this file, empty on
	// success.
	Error string `json:"error,omitempty"`
}

// ProcessFile patches a single container in place: map, validate,
// rewrite matching source-file records, reset the digest, flush. In
// dry-run mode the same work happens on a private copy and the file
// is never written.
//
// Errors from the container itself keep their type through wrapping:
// errors.As with the ifc error types still classifies them.
func ProcessFile(path string, options Options) (FileResult, error) {
	result := FileResult{Path: path}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mode := mapped.ReadWrite
	if options.DryRun {
		mode = mapped.ReadOnly
	}
	view, err := mapped.Open(path, mode)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	logger.Debug("mapped container", "path", path, "bytes", view.Size(), "dry_run", options.DryRun)

	data := view.Bytes()
	if options.DryRun {
		// Work on a copy so the mapping is never dirtied.
		data = append([]byte(nil), data...)
	}

	if err := patchBuffer(data, options, &result, logger); err != nil {
		view.Close()
		wrapped := fmt.Errorf("%s: %w", path, err)
		result.Error = wrapped.Error()
		return result, wrapped
	}

	if !options.DryRun {
		if err := view.Sync(); err != nil {
			view.Close()
			wrapped := fmt.Errorf("%s: %w", path, err)
			result.Error = wrapped.Error()
			return result, wrapped
		}
	}
	if err := view.Close(); err != nil {
		wrapped := fmt.Errorf("%s: %w", path, err)
		result.Error = wrapped.Error()
		return result, wrapped
	}

	logger.Debug("patched container", "path", path,
		"records", result.Records, "rewritten", result.Rewritten, "digest_reset", result.DigestReset)
	return result, nil
}

// patchBuffer runs the rewrite pass over an in-memory container
// image, filling result as it goes.
func patchBuffer(data []byte, options Options, result *FileResult, logger *slog.Logger) (err error) {
	// Accessing a mapping can fault if the underlying storage fails
	// or the file shrinks under us. Turn that into an error instead
	// of a crash.
	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)
		if r := recover(); r != nil {
			err = fmt.Errorf("page fault reading mapped container: %v", r)
		}
	}()

	file, err := ifc.Open(data)
	if err != nil {
		return err
	}
	if err := file.Validate(ifc.ValidationPolicy{
		Architecture:   options.Architecture,
		IntegrityCheck: options.IntegrityCheck,
	}); err != nil {
		return err
	}

	partition, found, err := file.Partition(ifc.SourceFilePartition)
	if err != nil {
		return err
	}
	if !found {
		// Nothing to rewrite and nothing was touched, so the digest
		// stays as stored.
		logger.Debug("no source-file partition", "path", result.Path)
		return nil
	}
	result.PartitionFound = true

	records, err := file.SourceFiles(partition)
	if err != nil {
		return err
	}
	result.Records = len(records)

	for _, record := range records {
		if record.Name == 0 {
			continue
		}
		source, err := file.GetString(record.Name)
		if err != nil {
			return err
		}
		rewritten, changed := options.Rule.Apply(source)
		if !changed {
			continue
		}
		if err := file.SetString(record.Name, rewritten); err != nil {
			return err
		}
		result.Rewritten++
		logger.Debug("rewrote source path", "from", source, "to", rewritten)
	}

	// Visiting any record counts as touching the container, so the
	// digest is recomputed even when every rewrite was a no-op. An
	// empty partition touches nothing.
	if len(records) > 0 {
		file.ResetContentHash()
		result.DigestReset = true
	}
	return nil
}

// ProcessFiles patches a batch of containers sequentially, one at a
// time, with no state shared between files. By default the batch
// aborts on the first failure and the returned slice covers only the
// files attempted so far; with KeepGoing every file is attempted and
// the failures come back joined into one error.
func ProcessFiles(paths []string, options Options) ([]FileResult, error) {
	results := make([]FileResult, 0, len(paths))
	var errs []error
	for _, path := range paths {
		result, err := ProcessFile(path, options)
		results = append(results, result)
		if err != nil {
			if !options.KeepGoing {
				return results, err
			}
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}
