package main

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractBinaryZip(t *testing.T) {
	tests := []struct {
		testName string // description of this test case
		// Named input parameters for target function.
		entries map[string]string
		binName string
		want    string
		wantErr bool
	}{
		{
			testName: "top level entry",
			entries:  map[string]string{"ai.so": "library"},
			binName:  "ai.so",
			want:     "library",
		},
		{
			testName: "nested entry",
			entries:  map[string]string{"ai-linux-cpu-x86_64/lib/ai.so": "library"},
			binName:  "ai.so",
			want:     "library",
		},
		{
			testName: "ignores other files",
			entries: map[string]string{
				"README.md":  "docs",
				"lib/ai.dll": "library",
			},
			binName: "ai.dll",
			want:    "library",
		},
		{
			testName: "no matching entry",
			entries:  map[string]string{"README.md": "docs"},
			binName:  "ai.so",
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			dir := t.TempDir()
			archive := filepath.Join(dir, "artifact-0.5.9.zip")
			if err := os.WriteFile(archive, makeZip(t, tt.entries), 0644); err != nil {
				t.Fatal(err)
			}

			got, gotErr := ExtractBinary(archive, tt.binName)
			if gotErr != nil {
				if !tt.wantErr {
					t.Errorf("ExtractBinary() failed: %v", gotErr)
				}
				return
			}
			if tt.wantErr {
				t.Fatal("ExtractBinary() succeeded unexpectedly")
			}
			if want := filepath.Join(dir, tt.binName); got != want {
				t.Errorf("ExtractBinary() = %v, want %v", got, want)
			}
			data, err := os.ReadFile(got)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("extracted content = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestExtractBinaryTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "artifact-0.5.9.tar.gz")

	file, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(file)
	tw := tar.NewWriter(gw)
	content := []byte("library")
	if err := tw.WriteHeader(&tar.Header{
		Name:     "ai-macos/ai.dylib",
		Typeflag: tar.TypeReg,
		Mode:     0755,
		Size:     int64(len(content)),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := file.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := ExtractBinary(archive, "ai.dylib")
	if err != nil {
		t.Fatalf("ExtractBinary() failed: %v", err)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "library" {
		t.Errorf("extracted content = %q, want %q", data, "library")
	}
}

func TestExtractBinaryUnsupported(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "artifact.rar")
	if err := os.WriteFile(archive, []byte("not an archive"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ExtractBinary(archive, "ai.so"); err == nil {
		t.Fatal("ExtractBinary() succeeded unexpectedly")
	}
}
