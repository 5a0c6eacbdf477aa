package cmd

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/jordan-castro/pixelscript-tools/pkg"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Removes the dist folder",
	RunE: func(cmd *cobra.Command, args []string) error {
		withTarget, err := cmd.Flags().GetBool("target")
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

		dirs := []string{filepath.Join(root, cfg.DistDir)}
		if withTarget {
			dirs = append(dirs, filepath.Join(root, cfg.TargetDir))
		}

		for _, dir := range dirs {
			pkg.PrintSubtask("Remove " + dir)
			err = os.RemoveAll(dir)
			if err != nil {
				return eris.Wrapf(err, "Could not delete %s", dir)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Bool("target", false, "also remove the cargo target directory")
}
