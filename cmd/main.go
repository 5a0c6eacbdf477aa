package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tool",
	Short: "Build tools for pixelscript",
	Long: `This command bundles the scripts used to build and test pixelscript.
This includes building the crate, collecting the compiled libraries into a
distribution folder and running the command-driven test files.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
