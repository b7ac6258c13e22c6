// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ifcpatch/cmd/ifcpatch/cli"
	"github.com/bureau-foundation/ifcpatch/lib/config"
	"github.com/bureau-foundation/ifcpatch/lib/ifc"
	"github.com/bureau-foundation/ifcpatch/lib/patch"
)

// PatchParams holds the parameters shared by the root command and the
// explicit patch subcommand.
//
// Exported so the root command can embed it: flag binding walks the
// params struct with reflection, and fields reached through an
// unexported embedded type cannot be addressed via reflect.
type PatchParams struct {
	cli.JSONOutput
	Config        string `json:"config"         flag:"config,c"           desc:"rewrite rule config file (default: $IFCPATCH_CONFIG, then built-in rule)"`
	Arch          string `json:"arch"           flag:"arch"               desc:"require this architecture (x86, x64, arm32, arm64, hybridx86arm64, arm64ec)"`
	DryRun        bool   `json:"dry_run"        flag:"dry-run,n"          desc:"report what would change without writing"`
	KeepGoing     bool   `json:"keep_going"     flag:"keep-going,k"       desc:"continue past per-file failures, report them all at the end"`
	SkipIntegrity bool   `json:"skip_integrity" flag:"no-integrity-check" desc:"skip content hash verification before patching"`
}

func patchCommand() *cli.Command {
	var params PatchParams

	return &cli.Command{
		Name:    "patch",
		Summary: "Rewrite source paths and reseal the content hash",
		Usage:   "ifcpatch patch [flags] <file>...",
		Description: `Rewrite enlistment source paths in each named IFC file and reseal
the content hash.

Each file is validated (signature, optional architecture, content
hash), its source-file partition located, and every recorded path run
through the configured rewrite rule. Rewrites happen in place: the
replacement prefix overwrites the leading span of the original path,
so the file never changes size. After any visit to the partition the
content hash is recomputed, keeping the container self-verifying.

Files without a source-file partition are left byte-for-byte
unchanged. By default the run aborts on the first file that fails;
--keep-going processes the full batch and reports every failure.`,
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("patch", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Patch every interface unit in a build directory",
				Command:     "ifcpatch patch build/*.ifc",
			},
			{
				Description: "Require x64 containers and use a custom rule",
				Command:     "ifcpatch patch --arch x64 --config rules.yaml build/app.ifc",
			},
			{
				Description: "Machine-readable per-file results",
				Command:     "ifcpatch patch --json --keep-going build/*.ifc",
			},
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("no input files")
			}
			return runPatch(&params, args)
		},
	}
}

// runPatch loads configuration, builds patch options, and processes the
// batch. Shared between the root command (bare file arguments) and the
// explicit patch subcommand.
func runPatch(params *PatchParams, files []string) error {
	options, err := buildOptions(params)
	if err != nil {
		return err
	}

	results, processErr := patch.ProcessFiles(files, options)

	if done, err := params.EmitJSON(results); done {
		if err != nil {
			return err
		}
		if processErr != nil {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}

	for i := range results {
		// Failures are carried by processErr; printing them here too
		// would report each one twice.
		if results[i].Error != "" {
			continue
		}
		fmt.Println(describeResult(&results[i], params.DryRun))
	}
	return processErr
}

// describeResult renders one successful file outcome as a single line.
func describeResult(result *patch.FileResult, dryRun bool) string {
	switch {
	case !result.PartitionFound:
		return fmt.Sprintf("%s: no source-file partition, unchanged", result.Path)
	case result.Records == 0:
		return fmt.Sprintf("%s: source-file partition is empty, unchanged", result.Path)
	case dryRun:
		return fmt.Sprintf("%s: would rewrite %d of %d source paths", result.Path, result.Rewritten, result.Records)
	default:
		return fmt.Sprintf("%s: rewrote %d of %d source paths, content hash resealed", result.Path, result.Rewritten, result.Records)
	}
}

// buildOptions resolves configuration and flags into patch options.
// Flags override the corresponding config file settings.
func buildOptions(params *PatchParams) (patch.Options, error) {
	cfg, err := loadConfig(params.Config)
	if err != nil {
		return patch.Options{}, err
	}
	if err := cfg.Validate(); err != nil {
		return patch.Options{}, err
	}

	arch, err := cfg.Architecture()
	if err != nil {
		return patch.Options{}, err
	}
	if params.Arch != "" {
		arch, err = ifc.ParseArchitecture(params.Arch)
		if err != nil {
			return patch.Options{}, err
		}
	}

	return patch.Options{
		Rule:           cfg.Rule(),
		Architecture:   arch,
		IntegrityCheck: !cfg.Validation.SkipIntegrityCheck && !params.SkipIntegrity,
		DryRun:         params.DryRun,
		KeepGoing:      params.KeepGoing,
		Logger:         cli.NewCommandLogger(),
	}, nil
}

// loadConfig resolves the rewrite configuration: an explicit --config
// path wins, then the IFCPATCH_CONFIG environment variable, then the
// built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv("IFCPATCH_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}
