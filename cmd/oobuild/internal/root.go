package internal

import (
	"errors"
	"fmt"
	"os"

	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"

	"github.com/openal-orbis/oobuild/internal/env"
)

var (
	rootDir      string
	manifestPath string
	envFiles     []string
	toolEnv      map[string]string
	verbose      bool
	quiet        bool
)

var rootCmd = &cobra.Command{
	Use:   "oobuild",
	Short: "oobuild builds OpenAL Soft for the PS4",
	Long: `oobuild compiles OpenAL Soft with the OpenOrbis PS4 toolchain, links and
packages it as a PRX, archives it as a static library and generates a stub
shared library exporting the public API.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rootDir, "root", "C", ".", "Project root directory")
	flags.StringVarP(&manifestPath, "manifest", "m", "", "Build manifest (TOML), defaults to the built-in one")
	flags.StringSliceVar(&envFiles, "env-file", nil, "Load environment variables from dotenv files")
	flags.StringToStringVar(&toolEnv, "tool-env", nil, "Extra environment variables for every tool (KEY=VALUE)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Discard tool output")
}

func setup(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetOutputLevel(log.Ldebug)
	} else {
		log.SetOutputLevel(log.Linfo)
	}
	return env.LoadFiles(envFiles...)
}

// statusError carries a failed build's status to the process exit code.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("build failed with status %d", e.status)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	var st *statusError
	if errors.As(err, &st) {
		os.Exit(st.status)
	}
	if err != nil {
		log.Fatal(err)
	}
}
