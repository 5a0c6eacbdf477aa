package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jordan-castro/pixelscript-tools/pkg"
)

var installToolsCmd = &cobra.Command{
	Use:   "install-tools",
	Short: "Installs the cargo CLI tools the build needs",
	Long: `Installs the cargo tools listed in pixelscript.yml (cbindgen by default)
into the workspace .tools directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := pkg.GetProjectRoot()
		if err != nil {
			return err
		}

		cfg, err := pkg.LoadConfig(root)
		if err != nil {
			return err
		}

		pkg.PrintTask("Installing cargo tools")
		return pkg.InstallTools(root, cfg.CargoTools)
	},
}

func init() {
	rootCmd.AddCommand(installToolsCmd)
}
