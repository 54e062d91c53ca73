package internal

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/openal-orbis/oobuild/internal/build"
	"github.com/openal-orbis/oobuild/internal/stub"
)

var stubPrint bool

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Generate only the stub library",
	Long: `Stub scans the public headers for exported functions and builds a shared
library defining each of them, without rebuilding the main library.

With --print the generated C source is written to stdout and no tool runs.`,
	Args: cobra.NoArgs,
	RunE: runStub,
}

func init() {
	stubCmd.Flags().BoolVar(&stubPrint, "print", false, "Print the generated stub source instead of building it")
	rootCmd.AddCommand(stubCmd)
}

func runStub(cmd *cobra.Command, args []string) error {
	if stubPrint {
		return printStub(cmd)
	}
	proj, err := loadProject(true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(proj.resolver.BuildDir, 0o755); err != nil {
		return err
	}
	p := proj.pipeline()
	set := proj.resolver.Set(p.Name, p.StubSource)
	syms, err := p.StubGenerator().Generate(set)
	if err != nil {
		pterm.Error.Println(err.Error())
		return &statusError{status: build.ExitStatus(err)}
	}
	pterm.Success.Println(fmt.Sprintf("%s: %d symbols", set.Stub, syms.Len()))
	return nil
}

func printStub(cmd *cobra.Command) error {
	proj, err := loadProject(false)
	if err != nil {
		return err
	}
	headers := make([]string, len(proj.manifest.Stub.Headers))
	for i, hdr := range proj.manifest.Stub.Headers {
		headers[i] = proj.resolver.Source(hdr)
	}
	gen := &stub.Generator{Headers: headers}
	src, _, err := gen.Source()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(src)
	return err
}
