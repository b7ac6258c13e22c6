// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Config string   `flag:"config,c" desc:"config file path"`
		DryRun bool     `flag:"dry-run" desc:"report without writing"`
		Jobs   int      `flag:"jobs" default:"1" desc:"worker count"`
		Skip   []string `flag:"skip" desc:"partitions to skip"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}

	args := []string{
		"--config", "/etc/ifcpatch.yaml",
		"--dry-run",
		"--jobs", "4",
		"--skip", "a,b",
	}
	if err := flagSet.Parse(args); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if p.Config != "/etc/ifcpatch.yaml" {
		t.Errorf("Config = %q, want %q", p.Config, "/etc/ifcpatch.yaml")
	}
	if !p.DryRun {
		t.Error("DryRun = false, want true")
	}
	if p.Jobs != 4 {
		t.Errorf("Jobs = %d, want 4", p.Jobs)
	}
	if len(p.Skip) != 2 || p.Skip[0] != "a" || p.Skip[1] != "b" {
		t.Errorf("Skip = %v, want [a b]", p.Skip)
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Arch    string `flag:"arch" default:"x64"`
		Verify  bool   `flag:"verify" default:"true"`
		Retries int    `flag:"retries" default:"3"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if p.Arch != "x64" {
		t.Errorf("Arch = %q, want default %q", p.Arch, "x64")
	}
	if !p.Verify {
		t.Error("Verify = false, want default true")
	}
	if p.Retries != 3 {
		t.Errorf("Retries = %d, want default 3", p.Retries)
	}
}

func TestBindFlags_Shorthand(t *testing.T) {
	type params struct {
		Config string `flag:"config,c"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}
	if err := flagSet.Parse([]string{"-c", "rules.yaml"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Config != "rules.yaml" {
		t.Errorf("Config = %q, want %q", p.Config, "rules.yaml")
	}
}

func TestBindFlags_EmbeddedStruct(t *testing.T) {
	type params struct {
		JSONOutput
		Arch string `flag:"arch"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}
	if err := flagSet.Parse([]string{"--json", "--arch", "arm64"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !p.OutputJSON {
		t.Error("OutputJSON = false, want true (embedded JSONOutput flag)")
	}
	if p.Arch != "arm64" {
		t.Errorf("Arch = %q, want %q", p.Arch, "arm64")
	}
}

func TestBindFlags_SkipsUntaggedFields(t *testing.T) {
	type params struct {
		Config   string `flag:"config"`
		internal int    // unexported, no tag
		Derived  string // exported, no tag
	}

	p := params{internal: 7}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}

	count := 0
	flagSet.VisitAll(func(*pflag.Flag) { count++ })
	if count != 1 {
		t.Errorf("bound %d flags, want 1 (only the tagged field)", count)
	}
	_ = p.internal
	_ = p.Derived
}

func TestBindFlags_NotAPointer(t *testing.T) {
	type params struct {
		Config string `flag:"config"`
	}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	err := BindFlags(params{}, flagSet)
	if err == nil {
		t.Fatal("BindFlags(non-pointer) = nil, want error")
	}
	if !strings.Contains(err.Error(), "pointer to a struct") {
		t.Errorf("error = %q, want mention of pointer to a struct", err.Error())
	}
}

func TestBindFlags_UnsupportedType(t *testing.T) {
	type params struct {
		Ratio float64 `flag:"ratio"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	err := BindFlags(&p, flagSet)
	if err == nil {
		t.Fatal("BindFlags() = nil, want error for float64 field")
	}
	if !strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("error = %q, want mention of unsupported type", err.Error())
	}
}

func TestBindFlags_BadBoolDefault(t *testing.T) {
	type params struct {
		Fast bool `flag:"fast" default:"yes-please"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err == nil {
		t.Fatal("BindFlags() = nil, want error for unparseable bool default")
	}
}

func TestFlagsFromParams_PanicsOnInvalid(t *testing.T) {
	defer func() {
		if recovered := recover(); recovered == nil {
			t.Error("FlagsFromParams(non-pointer) did not panic")
		}
	}()

	type params struct {
		Config string `flag:"config"`
	}
	FlagsFromParams("test", params{})
}
