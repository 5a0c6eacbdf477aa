package pkg

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// suppress progress bars
	os.Setenv("CI", "true")
	os.Exit(m.Run())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0770))
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0660))
}

func distNames(t *testing.T, distDir string) []string {
	t.Helper()
	entries, err := ioutil.ReadDir(distDir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

func collectConfig() Config {
	cfg := DefaultConfig()
	cfg.Headers = nil
	return cfg
}

func TestCollectOnlyAllowedExtensions(t *testing.T) {
	root := t.TempDir()
	cfg := collectConfig()
	writeFile(t, filepath.Join(root, "target", "release", "pixelscript.so"), "lib")
	writeFile(t, filepath.Join(root, "target", "release", "other.txt"), "notes")

	result, err := CollectArtifacts(cfg, root, "")
	require.NoError(t, err)

	require.Equal(t, []string{"pixelscript.so"}, distNames(t, filepath.Join(root, cfg.DistDir)))
	require.Len(t, result.Artifacts, 1)
	require.Equal(t, "pixelscript.so", result.Artifacts[0].Name)
}

func TestCollectReleaseScanIsNotRecursive(t *testing.T) {
	root := t.TempDir()
	cfg := collectConfig()
	writeFile(t, filepath.Join(root, "target", "release", "pixel_script.a"), "lib")
	writeFile(t, filepath.Join(root, "target", "release", "deps", "noise.so"), "noise")

	_, err := CollectArtifacts(cfg, root, "")
	require.NoError(t, err)

	require.Equal(t, []string{"pixel_script.a"}, distNames(t, filepath.Join(root, cfg.DistDir)))
}

func TestCollectCratePrefixFilter(t *testing.T) {
	root := t.TempDir()
	cfg := collectConfig()
	writeFile(t, filepath.Join(root, "target", "release", "build", "mlua-sys-928374", "out", "lua", "liblua5.4.a"), "lua")
	writeFile(t, filepath.Join(root, "target", "release", "build", "rustpython-0f1e2d", "out", "libpython.so"), "python")
	writeFile(t, filepath.Join(root, "target", "release", "build", "zlib-555", "out", "libz.a"), "zlib")
	writeFile(t, filepath.Join(root, "target", "release", "build", "mlua-sys-928374", "scratch.a"), "scratch")

	_, err := CollectArtifacts(cfg, root, "")
	require.NoError(t, err)

	require.Equal(t, []string{"liblua5.4.a", "libpython.so"}, distNames(t, filepath.Join(root, cfg.DistDir)))
}

func TestCollectCleanSlate(t *testing.T) {
	root := t.TempDir()
	cfg := collectConfig()
	writeFile(t, filepath.Join(root, cfg.DistDir, "leftover.so"), "stale")
	writeFile(t, filepath.Join(root, "target", "release", "pixel_script.dylib"), "lib")

	_, err := CollectArtifacts(cfg, root, "")
	require.NoError(t, err)

	require.Equal(t, []string{"pixel_script.dylib"}, distNames(t, filepath.Join(root, cfg.DistDir)))
}

func TestCollectIsIdempotent(t *testing.T) {
	root := t.TempDir()
	cfg := collectConfig()
	writeFile(t, filepath.Join(root, "target", "release", "pixel_script.wasm"), "wasm")
	writeFile(t, filepath.Join(root, "target", "release", "build", "mlua-1", "out", "liblua.a"), "lua")

	first, err := CollectArtifacts(cfg, root, "")
	require.NoError(t, err)
	firstNames := distNames(t, filepath.Join(root, cfg.DistDir))

	second, err := CollectArtifacts(cfg, root, "")
	require.NoError(t, err)

	require.Equal(t, firstNames, distNames(t, filepath.Join(root, cfg.DistDir)))
	require.Equal(t, first.TotalBytes, second.TotalBytes)
}

func TestCollectExtensionMatchIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	cfg := collectConfig()
	writeFile(t, filepath.Join(root, "target", "release", "PIXEL_SCRIPT.SO"), "lib")

	_, err := CollectArtifacts(cfg, root, "")
	require.NoError(t, err)

	require.Equal(t, []string{"PIXEL_SCRIPT.SO"}, distNames(t, filepath.Join(root, cfg.DistDir)))
}

func TestCollectReportsTotalBytes(t *testing.T) {
	root := t.TempDir()
	cfg := collectConfig()
	writeFile(t, filepath.Join(root, "target", "release", "a.so"), "12345")
	writeFile(t, filepath.Join(root, "target", "release", "b.a"), "123")

	result, err := CollectArtifacts(cfg, root, "")
	require.NoError(t, err)

	require.EqualValues(t, 8, result.TotalBytes)
	require.Len(t, result.Artifacts, 2)
}

func TestCollectMainCrateWinsNameCollision(t *testing.T) {
	root := t.TempDir()
	cfg := collectConfig()
	writeFile(t, filepath.Join(root, "target", "release", "build", "mlua-1", "out", "dup.so"), "dependency")
	writeFile(t, filepath.Join(root, "target", "release", "dup.so"), "main")

	_, err := CollectArtifacts(cfg, root, "")
	require.NoError(t, err)

	data, err := ioutil.ReadFile(filepath.Join(root, cfg.DistDir, "dup.so"))
	require.NoError(t, err)
	require.Equal(t, "main", string(data))
}

func TestCollectUsesTargetTripleDirectory(t *testing.T) {
	root := t.TempDir()
	cfg := collectConfig()
	writeFile(t, filepath.Join(root, "target", "wasm32-unknown-unknown", "release", "pixel_script.wasm"), "wasm")

	_, err := CollectArtifacts(cfg, root, "wasm32-unknown-unknown")
	require.NoError(t, err)

	require.Equal(t, []string{"pixel_script.wasm"}, distNames(t, filepath.Join(root, cfg.DistDir)))
}

func TestCollectMissingReleaseDirectory(t *testing.T) {
	root := t.TempDir()
	cfg := collectConfig()

	_, err := CollectArtifacts(cfg, root, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), filepath.Join(root, "target", "release"))
}

func TestCollectStagesHeaders(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	writeFile(t, filepath.Join(root, "target", "release", "pixel_script.so"), "lib")
	writeFile(t, filepath.Join(root, "pixelscript.h"), "// header")
	// pixelscript_m.h is missing on purpose; that's a warning, not an error

	_, err := CollectArtifacts(cfg, root, "")
	require.NoError(t, err)

	require.Equal(t, []string{"pixel_script.so", "pixelscript.h"}, distNames(t, filepath.Join(root, cfg.DistDir)))
}
