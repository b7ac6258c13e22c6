// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"runtime/debug"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ifcpatch/cmd/ifcpatch/cli"
	"github.com/bureau-foundation/ifcpatch/lib/ifc"
	"github.com/bureau-foundation/ifcpatch/lib/mapped"
)

// showParams holds the parameters for the show command.
type showParams struct {
	cli.JSONOutput
	Sources bool `json:"sources" flag:"sources,s" desc:"list the recorded source file paths"`
}

// containerInfo is the inspection result for one container.
type containerInfo struct {
	Path          string          `json:"path"`
	Size          int             `json:"size"`
	FormatVersion string          `json:"format_version"`
	Architecture  string          `json:"architecture"`
	Abi           uint8           `json:"abi"`
	Dialect       uint32          `json:"dialect"`
	SourcePath    string          `json:"source_path,omitempty"`
	Unit          uint32          `json:"unit"`
	Internal      bool            `json:"internal"`
	ContentHash   string          `json:"content_hash"`
	HashValid     bool            `json:"hash_valid"`
	Partitions    []partitionInfo `json:"partitions"`
	Sources       []string        `json:"sources,omitempty"`
}

// partitionInfo is one partition table entry with its name resolved.
type partitionInfo struct {
	Name        string `json:"name"`
	Offset      uint32 `json:"offset"`
	Cardinality uint32 `json:"cardinality"`
	EntrySize   uint32 `json:"entry_size"`
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Inspect a container's header and partition table",
		Usage:   "ifcpatch show [flags] <file>...",
		Description: `Print each container's header fields and partition table without
modifying anything. With --sources, also list the source file paths
recorded in the name.source-file partition — the strings that a patch
run would rewrite.`,
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Inspect a container",
				Command:     "ifcpatch show build/app.ifc",
			},
			{
				Description: "List the paths a patch run would touch",
				Command:     "ifcpatch show --sources build/app.ifc",
			},
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("no input files")
			}
			return runShow(&params, args)
		},
	}
}

func runShow(params *showParams, files []string) error {
	infos := make([]containerInfo, 0, len(files))
	for _, path := range files {
		info, err := showFile(path, params.Sources)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		infos = append(infos, info)
	}

	if done, err := params.EmitJSON(infos); done {
		return err
	}

	for i := range infos {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		printContainerInfo(&infos[i])
	}
	return nil
}

// showFile maps path read-only and gathers the inspection result.
func showFile(path string, includeSources bool) (containerInfo, error) {
	view, err := mapped.Open(path, mapped.ReadOnly)
	if err != nil {
		return containerInfo{}, err
	}
	defer view.Close()

	info, err := inspectContainer(view.Bytes(), includeSources)
	if err != nil {
		return containerInfo{}, err
	}
	info.Path = path
	return info, nil
}

// inspectContainer reads the header, partition table, and optionally
// the source file records out of a mapped container image.
func inspectContainer(data []byte, includeSources bool) (info containerInfo, err error) {
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
		return containerInfo{}, err
	}
	if err := file.Validate(ifc.ValidationPolicy{}); err != nil {
		return containerInfo{}, err
	}

	sourcePath, err := file.SrcPath()
	if err != nil {
		return containerInfo{}, err
	}

	info = containerInfo{
		Size:          file.Size(),
		FormatVersion: file.FormatVersion().String(),
		Architecture:  file.Architecture().String(),
		Abi:           file.Abi(),
		Dialect:       file.Dialect(),
		SourcePath:    sourcePath,
		Unit:          file.Unit(),
		Internal:      file.Internal(),
		ContentHash:   file.StoredDigest().String(),
		HashValid:     file.VerifyContentIntegrity() == nil,
	}

	partitions, err := file.Partitions()
	if err != nil {
		return containerInfo{}, err
	}
	for _, partition := range partitions {
		name, err := file.GetString(partition.Name)
		if err != nil {
			return containerInfo{}, err
		}
		info.Partitions = append(info.Partitions, partitionInfo{
			Name:        name,
			Offset:      partition.Offset,
			Cardinality: partition.Cardinality,
			EntrySize:   partition.EntrySize,
		})
	}

	if includeSources {
		sources, err := listSources(file)
		if err != nil {
			return containerInfo{}, err
		}
		info.Sources = sources
	}

	return info, nil
}

// listSources resolves every named record in the source-file partition.
// Returns nil when the partition is absent.
func listSources(file *ifc.File) ([]string, error) {
	partition, found, err := file.Partition(ifc.SourceFilePartition)
	if err != nil || !found {
		return nil, err
	}
	records, err := file.SourceFiles(partition)
	if err != nil {
		return nil, err
	}
	sources := make([]string, 0, len(records))
	for _, record := range records {
		if record.Name == 0 {
			continue
		}
		path, err := file.GetString(record.Name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, path)
	}
	return sources, nil
}

// printContainerInfo renders one inspection result as text.
func printContainerInfo(info *containerInfo) {
	fmt.Fprintf(os.Stdout, "%s\n", info.Path)
	fmt.Fprintf(os.Stdout, "  format version  %s\n", info.FormatVersion)
	fmt.Fprintf(os.Stdout, "  architecture    %s\n", info.Architecture)
	fmt.Fprintf(os.Stdout, "  abi             %d\n", info.Abi)
	fmt.Fprintf(os.Stdout, "  dialect         %d\n", info.Dialect)
	if info.SourcePath != "" {
		fmt.Fprintf(os.Stdout, "  source path     %s\n", info.SourcePath)
	}
	fmt.Fprintf(os.Stdout, "  unit            %d\n", info.Unit)
	fmt.Fprintf(os.Stdout, "  internal        %t\n", info.Internal)
	fmt.Fprintf(os.Stdout, "  size            %d bytes\n", info.Size)
	hashState := "valid"
	if !info.HashValid {
		hashState = "STALE"
	}
	fmt.Fprintf(os.Stdout, "  content hash    %s (%s)\n", info.ContentHash, hashState)

	if len(info.Partitions) > 0 {
		fmt.Fprintln(os.Stdout)
		tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
		fmt.Fprintf(tw, "  PARTITION\tOFFSET\tCOUNT\tENTRY SIZE\n")
		for _, partition := range info.Partitions {
			fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\n",
				partition.Name, partition.Offset, partition.Cardinality, partition.EntrySize)
		}
		tw.Flush()
	}

	if len(info.Sources) > 0 {
		fmt.Fprintln(os.Stdout)
		fmt.Fprintf(os.Stdout, "  sources (%d):\n", len(info.Sources))
		for _, source := range info.Sources {
			fmt.Fprintf(os.Stdout, "    %s\n", source)
		}
	}
}
