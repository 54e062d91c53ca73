package internal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the build folder",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	proj, err := loadProject(false)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(proj.resolver.BuildDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", proj.resolver.BuildDir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", proj.resolver.BuildDir)
	return nil
}
