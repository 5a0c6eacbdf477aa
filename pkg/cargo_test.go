package pkg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCargoArgsDefault(t *testing.T) {
	args := CargoArgs(BuildOptions{})
	require.Equal(t, []string{"build", "--release"}, args)
}

func TestCargoArgsWithTarget(t *testing.T) {
	args := CargoArgs(BuildOptions{Target: "wasm32-unknown-unknown"})
	require.Equal(t, []string{"build", "--release", "--target=wasm32-unknown-unknown"}, args)
}

func TestCargoArgsWithFeatures(t *testing.T) {
	args := CargoArgs(BuildOptions{Features: []string{"lua", "python"}})
	require.Equal(t, []string{"build", "--release", "--no-default-features", "--features", "lua,python"}, args)
}

func TestCargoArgsWithTargetAndFeatures(t *testing.T) {
	args := CargoArgs(BuildOptions{Target: "x86_64-pc-windows-msvc", Features: []string{"lua"}})
	require.Equal(t, []string{
		"build", "--release",
		"--target=x86_64-pc-windows-msvc",
		"--no-default-features", "--features", "lua",
	}, args)
}
