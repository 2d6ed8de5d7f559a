package main

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// Config holds all application configuration settings.
type Config struct {
	Global GlobalConfig `yaml:"global"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Wheel  WheelConfig  `yaml:"wheel"`
}

// GlobalConfig holds settings that apply to both subcommands.
type GlobalConfig struct {
	// BaseURL is the release download location. Artifact URLs are
	// formed as <baseUrl>/<version>/<artifact>-<version>.zip.
	BaseURL string `yaml:"baseUrl"`
	// VersionsURL lists published releases as JSON, used to resolve
	// the "latest" version.
	VersionsURL string `yaml:"versionsUrl"`
}

// FetchConfig holds settings for the fetch subcommand.
type FetchConfig struct {
	BinariesDir string `yaml:"binariesDir"`
}

// WheelConfig holds settings for the wheel subcommand.
type WheelConfig struct {
	PackageDir string `yaml:"packageDir"`
	DistDir    string `yaml:"distDir"`
	Pyproject  string `yaml:"pyproject"`
	Readme     string `yaml:"readme"`
}

const repo = "sqliteai/sqlite-ai"

// DefaultConfig returns the configuration used when no config file or
// flag overrides a setting.
func DefaultConfig() Config {
	return Config{
		Global: GlobalConfig{
			BaseURL:     "https://github.com/" + repo + "/releases/download",
			VersionsURL: "https://api.github.com/repos/" + repo + "/releases",
		},
		Fetch: FetchConfig{
			BinariesDir: filepath.Join("src", "sqliteai", "binaries"),
		},
		Wheel: WheelConfig{
			PackageDir: "src",
			DistDir:    "dist",
			Pyproject:  "pyproject.toml",
			Readme:     "README.md",
		},
	}
}

// LoadConfig reads the configuration from a reader into `cfg`.
// Settings not present in the input keep their previous values.
func LoadConfig(r io.Reader, cfg *Config) error {
	if r == nil {
		return nil
	}
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadConfigFile reads the configuration from a file into `cfg`.
// A missing file is not an error, the previous values stand.
func LoadConfigFile(name string, cfg *Config) error {
	file, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() {
		_ = file.Close()
	}()
	return LoadConfig(file, cfg)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		path = filepath.Join("${HOME}", path[1:])
	}
	return os.ExpandEnv(path)
}
