package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cluttrdev/cli"
	"github.com/pterm/pterm"

	"github.com/sqliteai/aipack/internal/metaerr"
	"github.com/sqliteai/aipack/internal/wheel"
)

func newWheelCmd() *cli.Command {
	cfg := wheelCmd{}

	fs := flag.NewFlagSet("aipack wheel", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "wheel",
		ShortHelp:  "Build the platform-tagged wheel from the staged binaries.",
		ShortUsage: "aipack wheel [OPTION]... -plat-name PLATFORM",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type wheelCmd struct {
	rootCmd

	platName   string
	version    string
	packageDir string
	distDir    string
	pyproject  string
	readme     string
}

func (c *wheelCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)

	fs.StringVar(&c.platName, "plat-name", "", "The platform tag of the wheel. (required)")
	fs.StringVar(&c.version, "version", "", "The package version. (default $PACKAGE_VERSION)")
	fs.StringVar(&c.packageDir, "package-dir", "", "The directory to bundle. (default from config)")
	fs.StringVar(&c.distDir, "dist-dir", "", "The directory to write the wheel into. (default from config)")
	fs.StringVar(&c.pyproject, "pyproject", "", "The project manifest file. (default from config)")
	fs.StringVar(&c.readme, "readme", "", "The long description file. (default from config)")
}

func (c *wheelCmd) Exec(ctx context.Context, args []string) (err error) {
	c.initLogging()

	defer func() {
		if err != nil && c.logFile != os.Stderr {
			err = fmt.Errorf("%w\nSee %s for details", err, c.logFile.Name())
		}
	}()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if c.packageDir != "" {
		cfg.Wheel.PackageDir = c.packageDir
	}
	if c.distDir != "" {
		cfg.Wheel.DistDir = c.distDir
	}
	if c.pyproject != "" {
		cfg.Wheel.Pyproject = c.pyproject
	}
	if c.readme != "" {
		cfg.Wheel.Readme = c.readme
	}

	if c.platName == "" {
		return fmt.Errorf("missing required flag: -plat-name")
	}
	plat, err := LookupPlatform(c.platName)
	if err != nil {
		return err
	}

	version := c.version
	if version == "" {
		version = os.Getenv("PACKAGE_VERSION")
	}
	if version == "" {
		return fmt.Errorf("missing package version: set the PACKAGE_VERSION environment variable or pass -version")
	}

	project, err := LoadPyproject(cfg.Wheel.Pyproject)
	if err != nil {
		return fmt.Errorf("load project manifest: %w", err)
	}

	readme, err := os.ReadFile(cfg.Wheel.Readme)
	if err != nil {
		return fmt.Errorf("read long description: %w", err)
	}

	buildCfg := wheel.Config{
		Metadata: wheel.Metadata{
			Name:           project.Project.Name,
			Version:        version,
			Summary:        project.Project.Description,
			Author:         project.Author(),
			Homepage:       project.Homepage(),
			RequiresPython: project.Project.RequiresPython,
			Classifiers: []string{
				"Programming Language :: Python :: 3",
				plat.Classifier,
			},
			Description: string(readme),
		},
		Tag:        wheel.NewTag(plat.Name),
		PackageDir: expandPath(cfg.Wheel.PackageDir),
		DistDir:    expandPath(cfg.Wheel.DistDir),
	}

	spinner, _ := pterm.DefaultSpinner.Start("Building ", wheel.Filename(buildCfg.Metadata, buildCfg.Tag))
	path, err := wheel.Build(buildCfg)
	if err != nil {
		slog.With("platform", plat.Name, "version", version, "error", err).
			With(metaerr.GetMetadata(err)...).
			Error("failed to build wheel")
		spinner.Fail("Failed to build wheel: ", err)
		return fmt.Errorf("build wheel: %w", err)
	}
	spinner.Success("Wrote ", path)

	return nil
}
