// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rewrite implements the source-path substitution rule
// applied to container records.
//
// The rule turns a path under a build enlistment's source root into
// the equivalent path under the build cache. A path matches when it
// starts with the source root prefix and contains the public marker
// after it; the span between the two is the project name. The
// rewritten path keeps its byte length: the replacement overwrites a
// leading span of equal width and the tail is untouched, which is
// what lets the result be stored back into the container in place.
package rewrite

import (
	"fmt"
	"strings"
)

// Rule is a prefix-substitution policy over enlistment paths. All
// paths use backslash separators, as stored by the compiler.
type Rule struct {
	// SourceRoot is the prefix a path must start with to be
	// rewritten.
	SourceRoot string

	// PublicMarker bounds the project name. The first occurrence
	// after SourceRoot ends the project span.
	PublicMarker string

	// CachePrefix and CacheSuffix bracket the project name in the
	// replacement span.
	CachePrefix string
	CacheSuffix string
}

// DefaultRule returns the substitution policy for the standard
// enlistment layout: sources under SRC_PARENTsrc\<project>\public\
// map to ICACHECUR\<project>\src.
func DefaultRule() Rule {
	return Rule{
		SourceRoot:   `SRC_PARENTsrc\`,
		PublicMarker: `\public\`,
		CachePrefix:  `ICACHECUR\`,
		CacheSuffix:  `\src`,
	}
}

// Validate checks that the rule can only ever shrink or preserve a
// matching path's leading span. The replacement for project p is
// CachePrefix+p+CacheSuffix and the matched head is SourceRoot+p+
// PublicMarker, so the combined prefix and suffix must not be longer
// than the combined root and marker.
func (r Rule) Validate() error {
	if r.SourceRoot == "" {
		return fmt.Errorf("rewrite rule: source root must not be empty")
	}
	if r.PublicMarker == "" {
		return fmt.Errorf("rewrite rule: public marker must not be empty")
	}
	if r.CachePrefix == "" {
		return fmt.Errorf("rewrite rule: cache prefix must not be empty")
	}
	if len(r.CachePrefix)+len(r.CacheSuffix) > len(r.SourceRoot)+len(r.PublicMarker) {
		return fmt.Errorf("rewrite rule: replacement %q+project+%q can outgrow matched %q+project+%q",
			r.CachePrefix, r.CacheSuffix, r.SourceRoot, r.PublicMarker)
	}
	return nil
}

// Apply rewrites a single path. The second return is false when the
// path does not match the rule and is returned unchanged.
func (r Rule) Apply(path string) (string, bool) {
	if !strings.HasPrefix(path, r.SourceRoot) {
		return path, false
	}
	markerAt := strings.Index(path[len(r.SourceRoot):], r.PublicMarker)
	if markerAt < 0 {
		return path, false
	}

	// One level of project nesting folds into the name; deeper
	// separators are kept as-is.
	project := path[len(r.SourceRoot) : len(r.SourceRoot)+markerAt]
	project = strings.Replace(project, `\`, "_", 1)

	replacement := r.CachePrefix + project + r.CacheSuffix
	if len(replacement) > len(path) {
		return path, false
	}
	return replacement + path[len(replacement):], true
}
