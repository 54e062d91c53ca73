package internal

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openal-orbis/oobuild/internal/artifact"
	"github.com/openal-orbis/oobuild/internal/build"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print where every artifact is written",
	Long: `Paths prints the artifact set for the current manifest and, when the build
folder holds a record of a successful build, when that build ran.`,
	Args: cobra.NoArgs,
	RunE: runPaths,
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}

func runPaths(cmd *cobra.Command, args []string) error {
	proj, err := loadProject(false)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	set := proj.resolver.Set(proj.manifest.Name, proj.manifest.Stub.Source)
	printSet(out, proj.resolver.BuildDir, set)

	rec, err := build.LoadRecord(proj.resolver.BuildDir)
	switch {
	case err == nil:
		fmt.Fprintf(out, "%-12s %s (%d objects, %d symbols, took %s)\n", "last build",
			rec.BuildTime.Format(time.RFC3339), len(rec.Objects), len(rec.Symbols),
			rec.BuildTime.Sub(rec.StartTime).Round(time.Millisecond))
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("failed to read build record: %w", err)
	}
	return nil
}

func printSet(w io.Writer, buildDir string, set artifact.Set) {
	rows := []struct{ name, path string }{
		{"build", buildDir},
		{"elf", set.ELF},
		{"oelf", set.OELF},
		{"prx", set.PRX},
		{"archive", set.Archive},
		{"stub", set.Stub},
		{"stub source", set.StubSource},
		{"stub object", set.StubObject},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-12s %s\n", r.name, r.path)
	}
}
