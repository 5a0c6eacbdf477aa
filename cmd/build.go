package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jordan-castro/pixelscript-tools/pkg"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the crate and collects the libraries into the dist folder",
	Long: `Runs cargo build --release (optionally for a different target triple or
feature set) and copies the resulting libraries, the libraries of the
scripting backends and the C headers into a flat distribution folder.
The folder is wiped first; every run starts clean.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := cmd.Flags().GetString("target")
		if err != nil {
			return err
		}

		features, err := cmd.Flags().GetStringSlice("features")
		if err != nil {
			return err
		}

		skipBuild, err := cmd.Flags().GetBool("skip-build")
		if err != nil {
			return err
		}

		root, err := pkg.GetProjectRoot()
		if err != nil {
			return err
		}

		cfg, err := pkg.LoadConfig(root)
		if err != nil {
			return err
		}

		if !skipBuild {
			pkg.PrintTask("Building " + cfg.MainCrate)
			err = pkg.RunCargoBuild(context.Background(), root, pkg.BuildOptions{
				Target:   target,
				Features: features,
			})
			if err != nil {
				return err
			}
		}

		pkg.PrintTask("Collecting libraries")
		result, err := pkg.CollectArtifacts(cfg, root, target)
		if err != nil {
			return err
		}

		for _, artifact := range result.Artifacts {
			pkg.PrintSubtask(fmt.Sprintf("Collected %s (%d bytes)", artifact.Name, artifact.Size))
		}

		pkg.PrintTask(fmt.Sprintf("Done; %d files, %d bytes total in %s", len(result.Artifacts), result.TotalBytes, cfg.DistDir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringP("target", "t", "", "target triple to cross-compile for")
	buildCmd.Flags().StringSliceP("features", "F", nil, "cargo features to build instead of the default set")
	buildCmd.Flags().Bool("skip-build", false, "only collect; assume the crate is already built")
}
