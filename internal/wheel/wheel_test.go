package wheel

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewTag(t *testing.T) {
	tests := []struct {
		platform string
		want     string
	}{
		{platform: "manylinux2014_x86_64", want: "py3-none-manylinux2014_x86_64"},
		{platform: "win_amd64", want: "py3-none-win_amd64"},
	}
	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			tag := NewTag(tt.platform)
			if tag.Python != "py3" || tag.ABI != "none" {
				t.Errorf("NewTag() = %+v, want py3/none components", tag)
			}
			if tag.Platform != tt.platform {
				t.Errorf("NewTag().Platform = %v, want %v", tag.Platform, tt.platform)
			}
			if got := tag.String(); got != tt.want {
				t.Errorf("Tag.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		testName string // description of this test case
		// Named input parameters for target function.
		name string
		want string
	}{
		{
			name: "sqliteai",
			want: "sqliteai-0.5.9-py3-none-win_amd64.whl",
		},
		{
			testName: "dashes escaped",
			name:     "sqlite-ai",
			want:     "sqlite_ai-0.5.9-py3-none-win_amd64.whl",
		},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			m := Metadata{Name: tt.name, Version: "0.5.9"}
			if got := Filename(m, NewTag("win_amd64")); got != tt.want {
				t.Errorf("Filename() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetadataRender(t *testing.T) {
	m := Metadata{
		Name:           "sqliteai",
		Version:        "0.5.9",
		Summary:        "SQLite extension for on-device AI",
		Author:         "SQLite AI Team",
		Homepage:       "https://github.com/sqliteai/sqlite-ai",
		RequiresPython: ">=3.9",
		Classifiers: []string{
			"Programming Language :: Python :: 3",
			"Operating System :: POSIX :: Linux",
		},
		Description: "# sqlite-ai\n",
	}

	got := m.render()

	for _, want := range []string{
		"Metadata-Version: 2.1\n",
		"Name: sqliteai\n",
		"Version: 0.5.9\n",
		"Requires-Python: >=3.9\n",
		"Classifier: Operating System :: POSIX :: Linux\n",
		"Description-Content-Type: text/markdown\n",
		"\n# sqlite-ai\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("METADATA missing %q:\n%s", want, got)
		}
	}
}

func TestBuild(t *testing.T) {
	pkgDir := t.TempDir()
	files := map[string]string{
		"sqliteai/__init__.py":        "import ctypes\n",
		"sqliteai/binaries/cpu/ai.so": "cpu build",
		"sqliteai/binaries/gpu/ai.so": "gpu build",
	}
	for name, content := range files {
		path := filepath.Join(pkgDir, name)
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := Config{
		Metadata: Metadata{
			Name:    "sqliteai",
			Version: "0.5.9",
			Classifiers: []string{
				"Programming Language :: Python :: 3",
				"Operating System :: POSIX :: Linux",
			},
		},
		Tag:        NewTag("manylinux2014_x86_64"),
		PackageDir: pkgDir,
		DistDir:    filepath.Join(t.TempDir(), "dist"),
	}

	path, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if want := "sqliteai-0.5.9-py3-none-manylinux2014_x86_64.whl"; filepath.Base(path) != want {
		t.Errorf("Build() = %v, want %v", filepath.Base(path), want)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open wheel: %v", err)
	}
	defer func() {
		_ = r.Close()
	}()

	members := make(map[string]string)
	var names []string
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		members[f.Name] = string(data)
		names = append(names, f.Name)
	}
	sort.Strings(names)

	wantNames := []string{
		"sqliteai-0.5.9.dist-info/METADATA",
		"sqliteai-0.5.9.dist-info/RECORD",
		"sqliteai-0.5.9.dist-info/WHEEL",
		"sqliteai/__init__.py",
		"sqliteai/binaries/cpu/ai.so",
		"sqliteai/binaries/gpu/ai.so",
	}
	if d := cmp.Diff(wantNames, names); d != "" {
		t.Fatalf("wheel members mismatch (-want/+got): %v", d)
	}

	wheelFile := members["sqliteai-0.5.9.dist-info/WHEEL"]
	for _, want := range []string{
		"Root-Is-Purelib: false\n",
		"Tag: py3-none-manylinux2014_x86_64\n",
	} {
		if !strings.Contains(wheelFile, want) {
			t.Errorf("WHEEL missing %q:\n%s", want, wheelFile)
		}
	}

	metadata := members["sqliteai-0.5.9.dist-info/METADATA"]
	if !strings.Contains(metadata, "Classifier: Operating System :: POSIX :: Linux\n") {
		t.Errorf("METADATA missing classifier:\n%s", metadata)
	}

	// every member has a RECORD row, RECORD's own row carries no digest
	recordLines := strings.Split(strings.TrimSpace(members["sqliteai-0.5.9.dist-info/RECORD"]), "\n")
	if len(recordLines) != len(wantNames) {
		t.Fatalf("RECORD has %d rows, want %d", len(recordLines), len(wantNames))
	}
	for _, line := range recordLines {
		if strings.HasPrefix(line, "sqliteai-0.5.9.dist-info/RECORD") {
			if !strings.HasSuffix(line, ",,") {
				t.Errorf("RECORD row for itself = %q, want empty digest and size", line)
			}
			continue
		}
		if !strings.Contains(line, ",sha256=") {
			t.Errorf("RECORD row without digest: %q", line)
		}
	}
}

func TestBuildMissingMetadata(t *testing.T) {
	tests := []struct {
		testName string // description of this test case
		meta     Metadata
	}{
		{
			testName: "missing name",
			meta:     Metadata{Version: "0.5.9"},
		},
		{
			testName: "missing version",
			meta:     Metadata{Name: "sqliteai"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			cfg := Config{
				Metadata:   tt.meta,
				Tag:        NewTag("win_amd64"),
				PackageDir: t.TempDir(),
				DistDir:    t.TempDir(),
			}
			if _, err := Build(cfg); err == nil {
				t.Fatal("Build() succeeded unexpectedly")
			}
		})
	}
}
