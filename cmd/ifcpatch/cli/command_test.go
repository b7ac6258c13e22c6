// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "ifcpatch",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(args []string) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "verify",
				Run: func(args []string) error {
					called = "verify"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"verify"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "verify" {
		t.Errorf("dispatched to %q, want %q", called, "verify")
	}
}

func TestCommand_Execute_FallsThroughToRun(t *testing.T) {
	// A root command with both subcommands and Run treats an
	// unmatched first argument as a positional.
	var receivedArgs []string

	root := &Command{
		Name: "ifcpatch",
		Subcommands: []*Command{
			{Name: "verify", Run: func(args []string) error { return nil }},
		},
		Run: func(args []string) error {
			receivedArgs = args
			return nil
		},
	}

	if err := root.Execute([]string{"build/unit.ifc", "build/other.ifc"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(receivedArgs) != 2 || receivedArgs[0] != "build/unit.ifc" {
		t.Errorf("args = %v, want the two file paths", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var configPath string
	var target string

	command := &Command{
		Name: "patch",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("patch", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file path")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--config", "/custom.yaml", "unit.ifc"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if configPath != "/custom.yaml" {
		t.Errorf("configPath = %q, want %q", configPath, "/custom.yaml")
	}
	if target != "unit.ifc" {
		t.Errorf("target = %q, want %q", target, "unit.ifc")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "patch",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("patch", pflag.ContinueOnError)
			flagSet.Bool("dry-run", false, "report without writing")
			flagSet.String("config", "", "config file path")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--dry-rnu"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --dry-run") {
		t.Errorf("error = %q, want suggestion for '--dry-run'", errStr)
	}
	// Suggestion should be on the same line as the error, not buried.
	if !strings.Contains(errStr, "dry-rnu") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	// Should include a pointer to --help.
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "patch",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("patch", pflag.ContinueOnError)
			flagSet.Bool("dry-run", false, "report without writing")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "ifcpatch",
		Subcommands: []*Command{
			{Name: "patch"},
			{Name: "verify"},
			{Name: "version"},
		},
	}

	err := root.Execute([]string{"verfy"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"verify\"") {
		t.Errorf("error = %q, want suggestion for 'verify'", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "ifcpatch",
				Summary: "Patch source paths in binary module interfaces",
				Subcommands: []*Command{
					{Name: "verify", Summary: "Check container integrity"},
				},
			}

			err := root.Execute([]string{helpArg})
			if err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "ifcpatch",
		Subcommands: []*Command{
			{Name: "verify", Summary: "Check container integrity"},
		},
	}

	err := root.Execute([]string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "ifcpatch",
		Description: "Rewrite enlistment source paths inside IFC files.",
		Subcommands: []*Command{
			{Name: "patch", Summary: "Rewrite source paths and reseal"},
			{Name: "verify", Summary: "Check container integrity"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Patch two interface units in place",
				Command:     "ifcpatch build/app.ifc build/net.ifc",
			},
			{
				Description: "Check a container without modifying it",
				Command:     "ifcpatch verify build/app.ifc",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	// Verify structural elements are present.
	for _, want := range []string{
		"Rewrite enlistment source paths inside IFC files.",
		"Usage:",
		"ifcpatch <command> [flags]",
		"Commands:",
		"patch",
		"Rewrite source paths and reseal",
		"verify",
		"Check container integrity",
		"Examples:",
		"ifcpatch build/app.ifc build/net.ifc",
		"ifcpatch verify build/app.ifc",
		"Run 'ifcpatch <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "patch",
		Summary: "Rewrite source paths and reseal",
		Usage:   "ifcpatch patch <file>... [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("patch", pflag.ContinueOnError)
			flagSet.String("config", "", "rewrite rule config file")
			flagSet.Bool("dry-run", false, "report without writing")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"ifcpatch patch <file>... [flags]",
		"Flags:",
		"config",
		"dry-run",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "ifcpatch"}
	verify := &Command{Name: "verify", parent: root}

	if got := root.fullName(); got != "ifcpatch" {
		t.Errorf("root.fullName() = %q, want %q", got, "ifcpatch")
	}
	if got := verify.fullName(); got != "ifcpatch verify" {
		t.Errorf("verify.fullName() = %q, want %q", got, "ifcpatch verify")
	}
}
