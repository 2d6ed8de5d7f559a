// Package wheel writes platform-tagged Python wheel archives around a
// directory of pre-built binaries.
//
// A wheel bundling native shared libraries is never "pure": its platform
// tag must name the one platform the binaries were built for, while the
// python and abi tags stay broadly compatible because no
// interpreter-specific extension module is shipped.
package wheel

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Tag is a wheel compatibility tag (python-abi-platform).
type Tag struct {
	Python   string
	ABI      string
	Platform string
}

// NewTag returns the compatibility tag for a wheel that ships pre-built
// shared libraries for the given platform. The python and abi components
// are fixed to py3/none.
func NewTag(platform string) Tag {
	return Tag{
		Python:   "py3",
		ABI:      "none",
		Platform: platform,
	}
}

func (t Tag) String() string {
	return t.Python + "-" + t.ABI + "-" + t.Platform
}

// Metadata holds the package metadata written into the wheel's
// dist-info METADATA file.
type Metadata struct {
	Name           string
	Version        string
	Summary        string
	Author         string
	Homepage       string
	RequiresPython string
	Classifiers    []string
	// Description is the markdown long description (the README body).
	Description string
}

// Config parameterizes a wheel build.
type Config struct {
	Metadata   Metadata
	Tag        Tag
	PackageDir string
	DistDir    string
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9.]+`)

// escapeName normalizes a distribution name for use in file names.
func escapeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// Filename returns the wheel file name for the given metadata and tag.
func Filename(m Metadata, tag Tag) string {
	return fmt.Sprintf("%s-%s-%s.whl", escapeName(m.Name), m.Version, tag)
}

// Build writes the wheel archive into cfg.DistDir, bundling every file
// under cfg.PackageDir plus the generated dist-info members.
// It returns the path to the written wheel.
func Build(cfg Config) (string, error) {
	if cfg.Metadata.Name == "" {
		return "", fmt.Errorf("missing package name")
	}
	if cfg.Metadata.Version == "" {
		return "", fmt.Errorf("missing package version")
	}

	if err := os.MkdirAll(cfg.DistDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create dist dir: %w", err)
	}

	path := filepath.Join(cfg.DistDir, Filename(cfg.Metadata, cfg.Tag))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create wheel file: %w", err)
	}
	defer func() {
		_ = out.Close()
	}()

	w := &writer{zw: zip.NewWriter(out)}

	if err := w.addDir(cfg.PackageDir); err != nil {
		return "", fmt.Errorf("bundle package dir: %w", err)
	}

	distInfo := fmt.Sprintf("%s-%s.dist-info", escapeName(cfg.Metadata.Name), cfg.Metadata.Version)
	if err := w.add(distInfo+"/METADATA", strings.NewReader(cfg.Metadata.render())); err != nil {
		return "", err
	}
	if err := w.add(distInfo+"/WHEEL", strings.NewReader(renderWheelFile(cfg.Tag))); err != nil {
		return "", err
	}
	if err := w.addRecord(distInfo + "/RECORD"); err != nil {
		return "", err
	}

	if err := w.zw.Close(); err != nil {
		return "", fmt.Errorf("finalize wheel: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("write wheel: %w", err)
	}

	return path, nil
}

type record struct {
	path   string
	digest string
	size   int64
}

type writer struct {
	zw      *zip.Writer
	records []record
}

// add writes one member into the archive and tracks its digest and size
// for the RECORD file.
func (w *writer) add(name string, r io.Reader) error {
	f, err := w.zw.Create(name)
	if err != nil {
		return err
	}

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, hash), r)
	if err != nil {
		return fmt.Errorf("write member %s: %w", name, err)
	}

	w.records = append(w.records, record{
		path:   name,
		digest: "sha256=" + base64.RawURLEncoding.EncodeToString(hash.Sum(nil)),
		size:   n,
	})
	return nil
}

// addDir bundles every regular file under dir, using paths relative to
// dir as archive member names.
func (w *writer) addDir(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		err = w.add(filepath.ToSlash(rel), file)
		_ = file.Close()
		return err
	})
}

// addRecord writes the RECORD member listing every archive member.
// Its own row carries no digest or size.
func (w *writer) addRecord(name string) error {
	var sb strings.Builder
	for _, rec := range w.records {
		fmt.Fprintf(&sb, "%s,%s,%d\n", rec.path, rec.digest, rec.size)
	}
	fmt.Fprintf(&sb, "%s,,\n", name)

	f, err := w.zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.WriteString(f, sb.String())
	return err
}

func renderWheelFile(tag Tag) string {
	var sb strings.Builder
	sb.WriteString("Wheel-Version: 1.0\n")
	sb.WriteString("Generator: aipack\n")
	sb.WriteString("Root-Is-Purelib: false\n")
	sb.WriteString("Tag: " + tag.String() + "\n")
	return sb.String()
}

func (m Metadata) render() string {
	var sb strings.Builder
	sb.WriteString("Metadata-Version: 2.1\n")
	sb.WriteString("Name: " + m.Name + "\n")
	sb.WriteString("Version: " + m.Version + "\n")
	if m.Summary != "" {
		sb.WriteString("Summary: " + m.Summary + "\n")
	}
	if m.Homepage != "" {
		sb.WriteString("Home-page: " + m.Homepage + "\n")
	}
	if m.Author != "" {
		sb.WriteString("Author: " + m.Author + "\n")
	}
	if m.RequiresPython != "" {
		sb.WriteString("Requires-Python: " + m.RequiresPython + "\n")
	}
	for _, classifier := range m.Classifiers {
		sb.WriteString("Classifier: " + classifier + "\n")
	}
	if m.Description != "" {
		sb.WriteString("Description-Content-Type: text/markdown\n")
		sb.WriteString("\n")
		sb.WriteString(m.Description)
	}
	return sb.String()
}
