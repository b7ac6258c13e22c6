// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/ifcpatch/lib/ifc"
	"github.com/bureau-foundation/ifcpatch/lib/rewrite"
)

// Config is the configuration for ifcpatch.
type Config struct {
	// Rewrite configures the path substitution rule.
	Rewrite RewriteConfig `yaml:"rewrite"`

	// Validation configures container validation.
	Validation ValidationConfig `yaml:"validation"`
}

// RewriteConfig holds the four fragments of the substitution rule.
// All fragments are literal byte strings; paths in containers use
// backslash separators regardless of the host platform.
type RewriteConfig struct {
	// SourceRoot is the prefix a path must start with to be
	// rewritten. Default: SRC_PARENTsrc\
	SourceRoot string `yaml:"source_root"`

	// PublicMarker bounds the project-name span.
	// Default: \public\
	PublicMarker string `yaml:"public_marker"`

	// CachePrefix begins the replacement span.
	// Default: ICACHECUR\
	CachePrefix string `yaml:"cache_prefix"`

	// CacheSuffix ends the replacement span.
	// Default: \src
	CacheSuffix string `yaml:"cache_suffix"`
}

// ValidationConfig controls what is checked before a container is
// patched.
type ValidationConfig struct {
	// Architecture restricts patching to containers declaring this
	// architecture (x86, x64, arm32, arm64, hybridx86arm64,
	// arm64ec). Empty accepts any architecture.
	// Default: "" (any)
	Architecture string `yaml:"architecture"`

	// SkipIntegrityCheck disables digest verification before
	// patching. Patching still resets the digest afterwards.
	// Default: false
	SkipIntegrityCheck bool `yaml:"skip_integrity_check"`
}

// Default returns the built-in configuration: the standard enlistment
// layout, any architecture, integrity checking on.
func Default() *Config {
	rule := rewrite.DefaultRule()
	return &Config{
		Rewrite: RewriteConfig{
			SourceRoot:   rule.SourceRoot,
			PublicMarker: rule.PublicMarker,
			CachePrefix:  rule.CachePrefix,
			CacheSuffix:  rule.CacheSuffix,
		},
	}
}

// Load loads configuration from the IFCPATCH_CONFIG environment
// variable. Fails when the variable is unset; callers that can run on
// defaults should call Default instead.
func Load() (*Config, error) {
	path := os.Getenv("IFCPATCH_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("IFCPATCH_CONFIG environment variable not set; " +
			"set it to the path of your ifcpatch.yaml config file, or use --config flag")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merging the
// file's values over the defaults. Environment variables do not
// override config values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Rule().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Architecture(); err != nil {
		errs = append(errs, fmt.Errorf("validation.architecture: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Rule converts the rewrite section into the rule applied to
// container records.
func (c *Config) Rule() rewrite.Rule {
	return rewrite.Rule{
		SourceRoot:   c.Rewrite.SourceRoot,
		PublicMarker: c.Rewrite.PublicMarker,
		CachePrefix:  c.Rewrite.CachePrefix,
		CacheSuffix:  c.Rewrite.CacheSuffix,
	}
}

// Architecture parses the validation section's architecture name.
// The empty string parses to ifc.ArchUnknown, which accepts any
// container.
func (c *Config) Architecture() (ifc.Architecture, error) {
	if c.Validation.Architecture == "" {
		return ifc.ArchUnknown, nil
	}
	return ifc.ParseArchitecture(c.Validation.Architecture)
}
