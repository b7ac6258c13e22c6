// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the ifcpatch CLI command tree.
//
// The root command doubles as the patch operation: "ifcpatch
// build/app.ifc" rewrites that file in place, matching the original
// single-purpose invocation. Subcommands add the read-only surfaces
// (verify, show) and version reporting.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ifcpatch/cmd/ifcpatch/cli"
	"github.com/bureau-foundation/ifcpatch/lib/version"
)

// rootParams extends the patch parameters with the root-only
// --version flag.
type rootParams struct {
	PatchParams
	ShowVersion bool `json:"-" flag:"version" desc:"print version information and exit"`
}

// Root builds and returns the complete ifcpatch command tree.
func Root() *cli.Command {
	var params rootParams

	root := &cli.Command{
		Name: "ifcpatch",
		Description: `ifcpatch: rewrite enlistment source paths inside IFC files.

Compiled module interfaces record the paths of the source files that
produced them. ifcpatch rewrites those paths to their cache-relative
form and reseals the container's content hash so the file still
validates on import.`,
		Usage: "ifcpatch [flags] <file>...\n  ifcpatch <command> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("ifcpatch", &params)
		},
		Subcommands: []*cli.Command{
			patchCommand(),
			verifyCommand(),
			showCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("ifcpatch %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Rewrite source paths in two interface units",
				Command:     "ifcpatch build/app.ifc build/net.ifc",
			},
			{
				Description: "Report what would change without writing",
				Command:     "ifcpatch --dry-run build/app.ifc",
			},
			{
				Description: "Check container integrity without modifying",
				Command:     "ifcpatch verify build/app.ifc",
			},
			{
				Description: "Inspect the header and partition table",
				Command:     "ifcpatch show build/app.ifc",
			},
		},
	}

	// Attached after construction so the closure can print the root
	// help when invoked with no file arguments.
	root.Run = func(args []string) error {
		if params.ShowVersion {
			fmt.Printf("ifcpatch %s\n", version.Full())
			return nil
		}
		if len(args) == 0 {
			root.PrintHelp(os.Stderr)
			return &cli.ExitError{Code: 1}
		}
		return runPatch(&params.PatchParams, args)
	}

	return root
}
