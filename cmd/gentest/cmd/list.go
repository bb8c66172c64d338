package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meow-stack/gentest/pkg/adapter"
	"github.com/meow-stack/gentest/pkg/env"
	"github.com/meow-stack/gentest/pkg/tmplgen"
)

var listJSON bool

// generatorInfo describes a discovered generator.
type generatorInfo struct {
	Namespace   string `json:"namespace"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
	Questions   int    `json:"questions"`
	Files       int    `json:"files"`
}

var listCmd = &cobra.Command{
	Use:   "list [directory...]",
	Short: "List generators found under directories",
	Long: `List the generators found under the given directories, or the working
directory when none is given. A generator is a directory holding a
generator.toml manifest.

Examples:
  gentest list
  gentest list ./generators --json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	_, logger, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	dir, err := getWorkDir()
	if err != nil {
		return err
	}
	e, err := env.New(env.Options{env.OptionCwd: dir}, adapter.New(), logger,
		env.WithPathLoader(tmplgen.NewLoader(logger)))
	if err != nil {
		return err
	}

	namespaces, err := e.Lookup(context.Background(), env.LookupOptions{Paths: args})
	if err != nil {
		return err
	}

	infos := make([]generatorInfo, 0, len(namespaces))
	for _, ns := range namespaces {
		meta, _ := e.Get(ns)
		info := generatorInfo{Namespace: ns, Path: meta.ResolvedPath}
		if m, err := tmplgen.ParseFile(filepath.Join(meta.ResolvedPath, env.DefaultManifest)); err == nil {
			info.Description = m.Description
			info.Questions = len(m.Questions)
			info.Files = len(m.Files)
		}
		infos = append(infos, info)
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No generators found.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAMESPACE\tDESCRIPTION\tPATH")
	for _, info := range infos {
		rel := info.Path
		if r, err := filepath.Rel(dir, info.Path); err == nil {
			rel = r
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Namespace, info.Description, rel)
	}
	return w.Flush()
}
