package internal

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"

	"github.com/openal-orbis/oobuild/internal/build"
	"github.com/openal-orbis/oobuild/internal/env"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the library from scratch",
	Long: `Build deletes the build folder, compiles every source, links and packages
the PRX, archives the static library and generates the stub library.

The process exits with the status of the first failing tool.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	proj, err := loadProject(true)
	if err != nil {
		return err
	}
	log.Infof("> %s = %s", env.SDKVar, proj.cfg.SDK)
	log.Infof("> ROOT_DIR = %s", proj.root)
	log.Infof("> BUILD_FOLDER = %s", proj.resolver.BuildDir)

	res, err := proj.pipeline().Run()
	status := build.ExitStatus(err)
	if err != nil {
		pterm.Error.Println(err.Error())
	} else {
		pterm.Success.Println(fmt.Sprintf("%s: %d objects, %d stub symbols",
			res.Artifacts.PRX, res.Objects.Len(), res.Symbols.Len()))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "> Build result = %d\n", status)
	if status != 0 {
		return &statusError{status: status}
	}
	return nil
}
