package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cluttrdev/cli"
	"github.com/pterm/pterm"

	"github.com/sqliteai/aipack/internal/metaerr"
)

func newFetchCmd() *cli.Command {
	cfg := fetchCmd{}

	fs := flag.NewFlagSet("aipack fetch", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "fetch",
		ShortHelp:  "Fetch the prebuilt extension binaries for a platform.",
		ShortUsage: "aipack fetch [OPTION]... PLATFORM VERSION",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type fetchCmd struct {
	rootCmd

	binariesDir string
	baseURL     string
}

func (c *fetchCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)

	fs.StringVar(&c.binariesDir, "binaries-dir", "", "The directory to stage binaries into. (default from config)")
	fs.StringVar(&c.baseURL, "base-url", "", "The release download base url. (default from config)")
}

func (c *fetchCmd) Exec(ctx context.Context, args []string) (err error) {
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
	if c.binariesDir != "" {
		cfg.Fetch.BinariesDir = c.binariesDir
	}
	if c.baseURL != "" {
		cfg.Global.BaseURL = c.baseURL
	}

	if len(args) != 2 {
		return fmt.Errorf("expected arguments: PLATFORM VERSION")
	}

	plat, err := LookupPlatform(args[0])
	if err != nil {
		return err
	}

	client := defaultClient()

	version, err := ResolveVersion(ctx, client, cfg.Global.VersionsURL, args[1])
	if err != nil {
		return fmt.Errorf("resolve version: %w", err)
	}

	return FetchBinaries(ctx, client, cfg.Global.BaseURL, plat, version, expandPath(cfg.Fetch.BinariesDir))
}

// FetchBinaries stages the extension binaries for the given platform and
// version into binDir, one artifact after another. The directory is
// deleted and recreated first, so it always reflects a single run.
// The first failed artifact aborts the remaining ones.
func FetchBinaries(ctx context.Context, client *http.Client, baseURL string, plat Platform, version string, binDir string) error {
	if err := os.RemoveAll(binDir); err != nil {
		return fmt.Errorf("reset binaries dir: %w", err)
	}
	if err := os.MkdirAll(binDir, os.ModePerm); err != nil {
		return fmt.Errorf("create binaries dir: %w", err)
	}

	for _, artifact := range plat.Artifacts {
		spinner, _ := pterm.DefaultSpinner.Start("Fetching ", artifact)
		if err := fetchArtifact(ctx, client, baseURL, artifact, version, plat.BinaryName, binDir); err != nil {
			slog.With("artifact", artifact, "version", version, "error", err).
				With(metaerr.GetMetadata(err)...).
				Error("failed to fetch artifact")
			spinner.Fail("Failed to fetch ", artifact, ": ", err)
			return fmt.Errorf("fetch %s: %w", artifact, err)
		}
		spinner.Success("Staged ", filepath.Join(variantDir(artifact), plat.BinaryName))
	}

	return nil
}

// fetchArtifact downloads one release artifact archive into binDir,
// stages the extension binary it contains into the artifact's cpu/ or
// gpu/ subdirectory, and removes the archive again.
func fetchArtifact(ctx context.Context, client *http.Client, baseURL string, artifact string, version string, binName string, binDir string) error {
	url := fmt.Sprintf("%s/%s/%s-%s.zip", strings.TrimSuffix(baseURL, "/"), version, artifact, version)

	slog.Info("downloading artifact", "url", url)

	archive, err := Download(ctx, client, url, binDir)
	if err != nil {
		return metaerr.WithMetadata(
			fmt.Errorf("download artifact: %w", err),
			"url", url,
		)
	}
	// the archive is removed even when extraction fails
	defer func() {
		_ = os.Remove(archive)
	}()

	subdir := filepath.Join(binDir, variantDir(artifact))
	if err := os.MkdirAll(subdir, os.ModePerm); err != nil {
		return fmt.Errorf("create variant dir: %w", err)
	}

	path, err := ExtractBinary(archive, binName)
	if err != nil {
		return fmt.Errorf("extract archived binary: %w", err)
	}
	defer func() {
		_ = os.Remove(path)
	}()

	out := filepath.Join(subdir, binName)
	if err := Install(path, out); err != nil {
		return fmt.Errorf("install binary: %w", err)
	}

	return nil
}
