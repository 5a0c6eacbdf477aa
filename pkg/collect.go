package pkg

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
)

// Artifact is a single collected library file.
type Artifact struct {
	// Source is the path the file was copied from.
	Source string
	// Name is the basename the file was stored under in the dist directory.
	Name string
	// Size in bytes.
	Size int64
}

// CollectResult aggregates everything a collection run copied.
type CollectResult struct {
	Artifacts  []Artifact
	TotalBytes int64
}

// CollectArtifacts wipes and recreates the dist directory, then copies every
// library artifact from the release directory (and from the build output of
// the configured dependency crates) into it. Artifacts keep their basename;
// a later copy silently overwrites an earlier one with the same name.
func CollectArtifacts(cfg Config, projectRoot, target string) (*CollectResult, error) {
	releaseDir := filepath.Join(projectRoot, cfg.TargetDir)
	if target != "" {
		releaseDir = filepath.Join(releaseDir, target)
	}
	releaseDir = filepath.Join(releaseDir, "release")

	info, err := os.Stat(releaseDir)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return nil, eris.Errorf("Release directory %s does not exist; did the build run?", releaseDir)
		}
		return nil, eris.Wrapf(err, "Failed to check %s", releaseDir)
	}
	if !info.IsDir() {
		return nil, eris.Errorf("%s is not a directory", releaseDir)
	}

	distDir := filepath.Join(projectRoot, cfg.DistDir)
	err = os.RemoveAll(distDir)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to clear dist directory %s", distDir)
	}

	err = os.MkdirAll(distDir, 0770)
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to create dist directory %s", distDir)
	}

	result := new(CollectResult)

	// dependency crates first, then the main crate so its artifacts win any
	// name collision
	err = collectCrateOutputs(cfg, releaseDir, distDir, result)
	if err != nil {
		return nil, err
	}

	err = collectReleaseArtifacts(cfg, releaseDir, distDir, result)
	if err != nil {
		return nil, err
	}

	err = collectHeaders(cfg, projectRoot, distDir, result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// collectCrateOutputs searches <release>/build for folders belonging to one
// of the configured dependency crates and recursively collects matching
// files from their out/ directory. Everything else under build/ is cargo
// scratch space and ignored.
func collectCrateOutputs(cfg Config, releaseDir, distDir string, result *CollectResult) error {
	buildDir := filepath.Join(releaseDir, "build")
	entries, err := ioutil.ReadDir(buildDir)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			// nothing to do; crates without build scripts don't have this
			return nil
		}
		return eris.Wrapf(err, "Failed to read %s", buildDir)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		matched := false
		for _, crate := range cfg.Crates {
			if strings.HasPrefix(entry.Name(), crate) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		outDir := filepath.Join(buildDir, entry.Name(), "out")
		_, err := os.Stat(outDir)
		if err != nil {
			if eris.Is(err, os.ErrNotExist) {
				continue
			}
			return eris.Wrapf(err, "Failed to check %s", outDir)
		}

		err = filepath.Walk(outDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !extensionAllowed(cfg, path) {
				return nil
			}

			return copyArtifact(path, distDir, info.Size(), result)
		})
		if err != nil {
			return eris.Wrapf(err, "Failed to collect artifacts from %s", outDir)
		}
	}

	return nil
}

// collectReleaseArtifacts scans the release directory itself, without
// recursing, for the main crate's own libraries.
func collectReleaseArtifacts(cfg Config, releaseDir, distDir string, result *CollectResult) error {
	entries, err := ioutil.ReadDir(releaseDir)
	if err != nil {
		return eris.Wrapf(err, "Failed to read %s", releaseDir)
	}

	for _, entry := range entries {
		if entry.IsDir() || !extensionAllowed(cfg, entry.Name()) {
			continue
		}

		err = copyArtifact(filepath.Join(releaseDir, entry.Name()), distDir, entry.Size(), result)
		if err != nil {
			return err
		}
	}

	return nil
}

// collectHeaders stages the C API headers next to the libraries. Headers the
// build didn't generate are skipped; the dist folder is still usable for
// pure-library consumers.
func collectHeaders(cfg Config, projectRoot, distDir string, result *CollectResult) error {
	for _, header := range cfg.Headers {
		path := filepath.Join(projectRoot, header)
		info, err := os.Stat(path)
		if err != nil {
			if eris.Is(err, os.ErrNotExist) {
				PrintError("Header " + header + " not found, skipping")
				continue
			}
			return eris.Wrapf(err, "Failed to check %s", path)
		}

		err = copyArtifact(path, distDir, info.Size(), result)
		if err != nil {
			return err
		}
	}

	return nil
}

func extensionAllowed(cfg Config, path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range cfg.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func copyArtifact(src, distDir string, size int64, result *CollectResult) error {
	srcHandle, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "Failed to open %s", src)
	}
	defer srcHandle.Close()

	name := filepath.Base(src)
	dest := filepath.Join(distDir, name)
	destHandle, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", dest)
	}
	defer destHandle.Close()

	bar := getProgressBar(size, "     "+name)
	buf := make([]byte, 4096)
	written, err := io.CopyBuffer(io.MultiWriter(destHandle, bar), srcHandle, buf)
	if err != nil {
		return eris.Wrapf(err, "Failed to copy %s to %s", src, dest)
	}
	bar.Finish()

	err = destHandle.Close()
	if err != nil {
		return eris.Wrapf(err, "Failed to finish writing %s", dest)
	}

	result.Artifacts = append(result.Artifacts, Artifact{
		Source: src,
		Name:   name,
		Size:   written,
	})
	result.TotalBytes += written

	return nil
}

func getProgressBar(length int64, desc string) *progressbar.ProgressBar {
	if os.Getenv("CI") == "true" {
		return progressbar.NewOptions64(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.DefaultBytes(length, desc)
}
