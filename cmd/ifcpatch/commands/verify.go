// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ifcpatch/cmd/ifcpatch/cli"
	"github.com/bureau-foundation/ifcpatch/lib/ifc"
	"github.com/bureau-foundation/ifcpatch/lib/mapped"
)

// verifyParams holds the parameters for the verify command.
type verifyParams struct {
	cli.JSONOutput
	Config string `json:"config" flag:"config,c" desc:"config file supplying the expected architecture"`
	Arch   string `json:"arch"   flag:"arch"     desc:"require this architecture (x86, x64, arm32, arm64, hybridx86arm64, arm64ec)"`
}

// checkStatus is the outcome of a single container check.
type checkStatus string

const (
	statusPass checkStatus = "pass"
	statusFail checkStatus = "fail"
)

// checkResult holds the outcome of one check on one container.
type checkResult struct {
	Name    string      `json:"name"`
	Status  checkStatus `json:"status"`
	Message string      `json:"message"`
}

// fileReport aggregates the checks for one container.
type fileReport struct {
	Path   string        `json:"path"`
	OK     bool          `json:"ok"`
	Checks []checkResult `json:"checks"`
}

func pass(name, message string) checkResult {
	return checkResult{Name: name, Status: statusPass, Message: message}
}

func fail(name, message string) checkResult {
	return checkResult{Name: name, Status: statusFail, Message: message}
}

func verifyCommand() *cli.Command {
	var params verifyParams

	return &cli.Command{
		Name:    "verify",
		Summary: "Check container signature, architecture, and content hash",
		Usage:   "ifcpatch verify [flags] <file>...",
		Description: `Check each named IFC file without modifying it: the container
signature, the declared architecture (when one is required via --arch
or the config file), and whether the stored content hash matches the
body.

Exit code is 0 when every file passes all checks, 1 otherwise.`,
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("verify", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Check a freshly patched interface unit",
				Command:     "ifcpatch verify build/app.ifc",
			},
			{
				Description: "Require arm64 containers",
				Command:     "ifcpatch verify --arch arm64 build/*.ifc",
			},
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("no input files")
			}
			return runVerify(&params, args)
		},
	}
}

func runVerify(params *verifyParams, files []string) error {
	expected, err := expectedArchitecture(params.Config, params.Arch)
	if err != nil {
		return err
	}

	reports := make([]fileReport, 0, len(files))
	allOK := true
	for _, path := range files {
		report := verifyFile(path, expected)
		if !report.OK {
			allOK = false
		}
		reports = append(reports, report)
	}

	if done, err := params.EmitJSON(reports); done {
		if err != nil {
			return err
		}
		if !allOK {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}

	for _, report := range reports {
		fmt.Fprintf(os.Stdout, "%s\n", report.Path)
		for _, check := range report.Checks {
			prefix := "PASS"
			if check.Status == statusFail {
				prefix = "FAIL"
			}
			fmt.Fprintf(os.Stdout, "  [%-4s]  %-14s  %s\n", prefix, check.Name, check.Message)
		}
	}
	fmt.Fprintln(os.Stdout)

	if !allOK {
		fmt.Fprintln(os.Stdout, "Some checks failed.")
		return &cli.ExitError{Code: 1}
	}
	fmt.Fprintln(os.Stdout, "All checks passed.")
	return nil
}

// expectedArchitecture resolves the architecture requirement: the
// --arch flag wins, then the config file's validation section, then
// no requirement.
func expectedArchitecture(configPath, archFlag string) (ifc.Architecture, error) {
	if archFlag != "" {
		return ifc.ParseArchitecture(archFlag)
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return ifc.ArchUnknown, err
	}
	return cfg.Architecture()
}

// verifyFile maps path read-only and runs the container checks. Any
// failure to even reach the container (missing file, empty file)
// becomes a single failed "open" check.
func verifyFile(path string, expected ifc.Architecture) fileReport {
	report := fileReport{Path: path}

	view, err := mapped.Open(path, mapped.ReadOnly)
	if err != nil {
		report.Checks = append(report.Checks, fail("open", err.Error()))
		return report
	}
	defer view.Close()

	checks, err := checkContainer(view.Bytes(), expected)
	if err != nil {
		checks = append(checks, fail("open", err.Error()))
	}
	report.Checks = checks
	report.OK = true
	for _, check := range report.Checks {
		if check.Status == statusFail {
			report.OK = false
			break
		}
	}
	return report
}

// checkContainer runs the individual checks against a mapped container
// image. Returns the checks completed so far plus an error if the
// image could not be interpreted at all.
func checkContainer(data []byte, expected ifc.Architecture) (checks []checkResult, err error) {
	// Reads from the mapping can fault if the underlying storage
	// fails. Turn that into an error instead of a crash.
	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)
		if r := recover(); r != nil {
			err = fmt.Errorf("page fault reading mapped container: %v", r)
		}
	}()

	file, err := ifc.Open(data)
	if err != nil {
		return nil, err
	}

	if err := file.Validate(ifc.ValidationPolicy{}); err != nil {
		checks = append(checks, fail("signature", err.Error()))
		// Without a valid signature the remaining header fields are
		// meaningless; stop here.
		return checks, nil
	}
	checks = append(checks, pass("signature", "valid container signature"))

	declared := file.Architecture()
	if expected != ifc.ArchUnknown && declared != expected {
		checks = append(checks, fail("architecture",
			fmt.Sprintf("container declares %s, expected %s", declared, expected)))
	} else {
		checks = append(checks, pass("architecture", declared.String()))
	}

	if err := file.VerifyContentIntegrity(); err != nil {
		checks = append(checks, fail("integrity", err.Error()))
	} else {
		checks = append(checks, pass("integrity",
			fmt.Sprintf("content hash %s matches body", abbreviateDigest(file.StoredDigest()))))
	}

	return checks, nil
}

// abbreviateDigest shortens a digest to its first eight hex characters
// for display.
func abbreviateDigest(digest ifc.Digest) string {
	full := digest.String()
	if len(full) > 8 {
		return full[:8]
	}
	return full
}
