package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jordan-castro/pixelscript-tools/pkg"
)

var runTestsCmd = &cobra.Command{
	Use:   "run-tests [skipped tests...]",
	Short: "Runs the shell commands embedded in the test files",
	Long: `Each file in the tests directory declares the command that runs it as a
comment on its 9th line. This command executes those commands one by one.
Any test names passed as arguments are skipped, as is test_repl.rs which
needs an interactive terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, err := cmd.Flags().GetDuration("timeout")
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

		logger := zerolog.New(NewConsoleWriter())
		ctx := pkg.WithLogger(context.Background(), &logger)

		report, err := pkg.RunTests(ctx, cfg, root, pkg.TestRunOptions{
			Skip:    args,
			Timeout: timeout,
		})
		if report != nil {
			pkg.PrintTask(fmt.Sprintf("%d passed, %d failed, %d skipped", report.Passed, report.Failed, report.Skipped))
			for _, result := range report.Results {
				if result.Status == pkg.TestFailed {
					pkg.PrintError(result.Name + ": " + result.Command)
				}
			}
		}

		return err
	},
}

func init() {
	rootCmd.AddCommand(runTestsCmd)
	runTestsCmd.Flags().Duration("timeout", 10*time.Minute, "time limit per test command (0 disables the limit)")
}
