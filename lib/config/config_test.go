// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/ifcpatch/lib/ifc"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	rule := cfg.Rule()
	if rule.SourceRoot != `SRC_PARENTsrc\` {
		t.Errorf("expected source_root=SRC_PARENTsrc\\, got %s", rule.SourceRoot)
	}
	if rule.CachePrefix != `ICACHECUR\` {
		t.Errorf("expected cache_prefix=ICACHECUR\\, got %s", rule.CachePrefix)
	}

	arch, err := cfg.Architecture()
	if err != nil {
		t.Fatalf("Architecture() failed: %v", err)
	}
	if arch != ifc.ArchUnknown {
		t.Errorf("expected any-architecture default, got %v", arch)
	}

	if cfg.Validation.SkipIntegrityCheck {
		t.Error("expected skip_integrity_check=false by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoad_RequiresIfcpatchConfig(t *testing.T) {
	// Save and restore IFCPATCH_CONFIG.
	origConfig := os.Getenv("IFCPATCH_CONFIG")
	defer os.Setenv("IFCPATCH_CONFIG", origConfig)

	// Unset IFCPATCH_CONFIG - Load() should fail.
	os.Unsetenv("IFCPATCH_CONFIG")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when IFCPATCH_CONFIG not set, got nil")
	}

	expectedMsg := "IFCPATCH_CONFIG environment variable not set"
	if err.Error()[:len(expectedMsg)] != expectedMsg {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithIfcpatchConfig(t *testing.T) {
	// Save and restore IFCPATCH_CONFIG.
	origConfig := os.Getenv("IFCPATCH_CONFIG")
	defer os.Setenv("IFCPATCH_CONFIG", origConfig)

	// Create temp config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ifcpatch.yaml")

	configContent := `
validation:
  architecture: arm64
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	// Set IFCPATCH_CONFIG and load.
	os.Setenv("IFCPATCH_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	arch, err := cfg.Architecture()
	if err != nil {
		t.Fatalf("Architecture() failed: %v", err)
	}
	if arch != ifc.ArchARM64 {
		t.Errorf("expected architecture=arm64, got %v", arch)
	}
}

func TestLoadFile(t *testing.T) {
	// Create temp config file overriding part of each section.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ifcpatch.yaml")

	configContent := `
rewrite:
  source_root: 'OTHERROOT\src\'
  cache_prefix: 'OCACHE\'

validation:
  architecture: x64
  skip_integrity_check: true
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	rule := cfg.Rule()
	if rule.SourceRoot != `OTHERROOT\src\` {
		t.Errorf("expected overridden source_root, got %s", rule.SourceRoot)
	}
	if rule.CachePrefix != `OCACHE\` {
		t.Errorf("expected overridden cache_prefix, got %s", rule.CachePrefix)
	}

	// Fields absent from the file keep their defaults.
	if rule.PublicMarker != `\public\` {
		t.Errorf("expected default public_marker, got %s", rule.PublicMarker)
	}
	if rule.CacheSuffix != `\src` {
		t.Errorf("expected default cache_suffix, got %s", rule.CacheSuffix)
	}

	if !cfg.Validation.SkipIntegrityCheck {
		t.Error("expected skip_integrity_check=true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("overridden config failed validation: %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestLoadFile_BadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ifcpatch.yaml")
	if err := os.WriteFile(configPath, []byte("rewrite: ["), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected error for malformed YAML, got nil")
	}
}

func TestValidate_BadArchitecture(t *testing.T) {
	cfg := Default()
	cfg.Validation.Architecture = "sparc"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown architecture, got nil")
	}
}

func TestValidate_OversizedReplacement(t *testing.T) {
	cfg := Default()
	cfg.Rewrite.CachePrefix = `A_PREFIX_LONGER_THAN_ROOT_AND_MARKER_COMBINED\`
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for oversized replacement, got nil")
	}
}
