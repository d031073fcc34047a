package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const manifestName = "equate.toml"

// projectManifest is the equate.toml of a project.
type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Check checkConfig `toml:"check"`
}

type checkConfig struct {
	// Comparators are registered by the project at run time.
	Comparators []string `toml:"comparators"`

	// Exclude lists glob patterns of paths to skip.
	Exclude []string `toml:"exclude"`

	// Workers bounds the files checked at once.
	Workers int `toml:"workers"`
}

// findManifest looks for equate.toml in startDir and its parents.
func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadManifest(startDir string) (*projectManifest, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if cfg.Check.Workers < 0 {
		return projectConfig{}, fmt.Errorf("%s: [check].workers must not be negative", path)
	}
	return cfg, nil
}
