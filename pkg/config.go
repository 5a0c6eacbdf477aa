package pkg

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the project root. The file is optional;
// every field falls back to the defaults below.
const ConfigFileName = "pixelscript.yml"

// Config describes where build artifacts come from and where they go.
type Config struct {
	// MainCrate is the name of the project's own crate.
	MainCrate string `yaml:"mainCrate"`
	// Crates lists the name prefixes of dependency crates whose build
	// output should be collected as well.
	Crates []string `yaml:"crates"`
	// Extensions is the allow-list of library file extensions. Matching is
	// case-insensitive.
	Extensions []string `yaml:"extensions"`
	// TargetDir is the cargo build output root, relative to the project root.
	TargetDir string `yaml:"targetDir"`
	// DistDir is the flat destination directory, relative to the project root.
	// It's wiped and recreated on every collection run.
	DistDir string `yaml:"distDir"`
	// Headers lists C header files (relative to the project root) that are
	// staged next to the collected libraries.
	Headers []string `yaml:"headers"`

	// TestsDir contains the test files the run-tests command inspects.
	TestsDir string `yaml:"testsDir"`
	// AlwaysSkip lists test files that are never run, regardless of the
	// skip names passed on the command line.
	AlwaysSkip []string `yaml:"alwaysSkip"`
	// DirectiveLine is the 1-based line number that holds a test's command.
	DirectiveLine int `yaml:"directiveLine"`
	// CommentMarker prefixes the command on the directive line.
	CommentMarker string `yaml:"commentMarker"`

	// CargoTools lists the cargo binaries install-tools installs, in
	// "name" or "name@version" form.
	CargoTools []string `yaml:"cargoTools"`
}

// DefaultConfig returns the settings for a plain pixelscript checkout.
func DefaultConfig() Config {
	return Config{
		MainCrate:     "pixel_script",
		Crates:        []string{"mlua", "rustpython"},
		Extensions:    []string{".lib", ".a", ".so", ".dylib", ".wasm"},
		TargetDir:     "target",
		DistDir:       "pixel_script",
		Headers:       []string{"pixelscript.h", "pixelscript_m.h"},
		TestsDir:      "tests",
		AlwaysSkip:    []string{"test_repl.rs"},
		DirectiveLine: 9,
		CommentMarker: "//",
		CargoTools:    []string{"cbindgen"},
	}
}

// LoadConfig reads pixelscript.yml from the project root if it exists and
// overlays it over the defaults.
func LoadConfig(projectRoot string) (Config, error) {
	cfg := DefaultConfig()

	cfgPath := filepath.Join(projectRoot, ConfigFileName)
	data, err := ioutil.ReadFile(cfgPath)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, eris.Wrapf(err, "Could not open file %s", cfgPath)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, eris.Wrapf(err, "Failed to parse %s", cfgPath)
	}

	if cfg.DirectiveLine < 1 {
		return cfg, eris.Errorf("directiveLine must be at least 1 (got %d)", cfg.DirectiveLine)
	}

	return cfg, nil
}
