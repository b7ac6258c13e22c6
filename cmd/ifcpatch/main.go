// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// ifcpatch rewrites enlistment source paths inside IFC binary module
// interfaces and reseals the embedded content hash.
//
// Usage:
//
//	ifcpatch [flags] <file>...
//	ifcpatch <command> [flags]
//
// Bare file arguments run the patch operation, matching the original
// single-purpose invocation. Subcommands (patch, verify, show,
// version) add explicit and read-only surfaces. Run "ifcpatch --help"
// for the full tree.
package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/ifcpatch/cmd/ifcpatch/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like verify) return an
		// ExitError with the desired exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
