// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rewrite

import "testing"

func TestApply(t *testing.T) {
	rule := DefaultRule()
	tests := []struct {
		name    string
		path    string
		want    string
		matched bool
	}{
		{
			name:    "simple project",
			path:    `SRC_PARENTsrc\foo\public\bar\baz.h`,
			want:    `ICACHECUR\foo\src\public\bar\baz.h`,
			matched: true,
		},
		{
			name:    "nested project folds first separator",
			path:    `SRC_PARENTsrc\team\app\public\inc\x.h`,
			want:    `ICACHECUR\team_app\src\public\inc\x.h`,
			matched: true,
		},
		{
			name:    "deeper nesting keeps later separators",
			path:    `SRC_PARENTsrc\a\b\c\public\y.h`,
			want:    `ICACHECUR\a_b\c\src\public\y.h`,
			matched: true,
		},
		{
			name:    "empty project",
			path:    `SRC_PARENTsrc\\public\x.h`,
			want:    `ICACHECUR\\src\public\x.h`,
			matched: true,
		},
		{
			name:    "wrong root passes through",
			path:    `OTHERROOTsrc\foo\public\bar.h`,
			want:    `OTHERROOTsrc\foo\public\bar.h`,
			matched: false,
		},
		{
			name:    "no marker passes through",
			path:    `SRC_PARENTsrc\foo\private\bar.h`,
			want:    `SRC_PARENTsrc\foo\private\bar.h`,
			matched: false,
		},
		{
			name:    "marker must follow the root",
			path:    `SRC_PARENTsrc\public\x.h`,
			want:    `SRC_PARENTsrc\public\x.h`,
			matched: false,
		},
		{
			name:    "already rewritten passes through",
			path:    `ICACHECUR\foo\src\public\bar\baz.h`,
			want:    `ICACHECUR\foo\src\public\bar\baz.h`,
			matched: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, matched := rule.Apply(test.path)
			if matched != test.matched {
				t.Errorf("Apply(%q) matched = %v, want %v", test.path, matched, test.matched)
			}
			if got != test.want {
				t.Errorf("Apply(%q) = %q, want %q", test.path, got, test.want)
			}
			if len(got) != len(test.path) {
				t.Errorf("Apply(%q) changed length %d -> %d", test.path, len(test.path), len(got))
			}
		})
	}
}

func TestApplyOversizedReplacement(t *testing.T) {
	// An invalid rule whose replacement outgrows a short matching
	// path must refuse the rewrite rather than grow the string.
	rule := Rule{
		SourceRoot:   `s\`,
		PublicMarker: `\p\`,
		CachePrefix:  `VERYLONGCACHEPREFIX\`,
		CacheSuffix:  `\src`,
	}
	path := `s\x\p\y`
	got, matched := rule.Apply(path)
	if matched {
		t.Error("oversized replacement reported a match")
	}
	if got != path {
		t.Errorf("Apply = %q, want input unchanged", got)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultRule().Validate(); err != nil {
		t.Errorf("DefaultRule().Validate() failed: %v", err)
	}

	tests := []struct {
		name string
		rule Rule
	}{
		{"empty source root", Rule{PublicMarker: `\public\`, CachePrefix: `c\`}},
		{"empty marker", Rule{SourceRoot: `s\`, CachePrefix: `c\`}},
		{"empty cache prefix", Rule{SourceRoot: `s\`, PublicMarker: `\public\`}},
		{
			"replacement can outgrow match",
			Rule{
				SourceRoot:   `s\`,
				PublicMarker: `\p\`,
				CachePrefix:  `cachecache\`,
				CacheSuffix:  `\src`,
			},
		},
	}
	for _, test := range tests {
		if err := test.rule.Validate(); err == nil {
			t.Errorf("%s: Validate() passed, want error", test.name)
		}
	}
}

func TestDefaultRuleFragments(t *testing.T) {
	rule := DefaultRule()
	if rule.SourceRoot != `SRC_PARENTsrc\` || rule.PublicMarker != `\public\` {
		t.Errorf("match fragments = %q, %q", rule.SourceRoot, rule.PublicMarker)
	}
	if rule.CachePrefix != `ICACHECUR\` || rule.CacheSuffix != `\src` {
		t.Errorf("replacement fragments = %q, %q", rule.CachePrefix, rule.CacheSuffix)
	}
}
