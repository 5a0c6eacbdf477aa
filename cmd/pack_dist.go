package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/jordan-castro/pixelscript-tools/pkg"
)

var packDistCmd = &cobra.Command{
	Use:   "pack-dist archive_name",
	Short: "Packs the dist folder into a compressed tarball",
	Long: `Pass the name of the archive that should be generated. The compression is
picked from the file name: .tar.xz or .tar.br.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return eris.New("Expected 1 argument!")
		}

		root, err := pkg.GetProjectRoot()
		if err != nil {
			return err
		}

		cfg, err := pkg.LoadConfig(root)
		if err != nil {
			return err
		}

		distDir := filepath.Join(root, cfg.DistDir)
		size, err := pkg.PackDist(distDir, args[0])
		if err != nil {
			return err
		}

		pkg.PrintTask(fmt.Sprintf("Wrote %s (%d bytes)", args[0], size))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(packDistCmd)
}
