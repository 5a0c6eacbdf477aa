package pkg

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
)

// BuildOptions control the cargo invocation performed before collection.
type BuildOptions struct {
	// Target selects a cross-compilation target triple. Empty means the
	// host platform.
	Target string
	// Features replaces the crate's default feature set when non-empty
	// (cargo is invoked with --no-default-features).
	Features []string
}

// CargoArgs derives the argument vector for `cargo` from the given options.
func CargoArgs(opts BuildOptions) []string {
	args := []string{"build", "--release"}

	if opts.Target != "" {
		args = append(args, "--target="+opts.Target)
	}

	if len(opts.Features) > 0 {
		args = append(args, "--no-default-features", "--features", strings.Join(opts.Features, ","))
	}

	return args
}

// RunCargoBuild compiles the crate in release mode. A non-zero exit aborts
// the run; we never collect artifacts from a failed build.
func RunCargoBuild(ctx context.Context, projectRoot string, opts BuildOptions) error {
	args := CargoArgs(opts)

	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = projectRoot
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err != nil {
		return eris.Wrapf(err, "cargo %s failed", strings.Join(args, " "))
	}

	return nil
}
