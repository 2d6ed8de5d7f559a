package main

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractBinary opens the given archive and extracts every entry whose
// path ends with binName, each overwriting the one before, so that the
// result is a single file named binName next to the archive.
// It returns the local path to the extracted file.
func ExtractBinary(archive string, binName string) (string, error) {
	in, err := os.Open(archive)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = in.Close()
	}()

	dst := filepath.Join(filepath.Dir(archive), binName)

	n, err := extractMatching(in, binName, dst)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", fmt.Errorf("no entry matching %s in %s", binName, filepath.Base(archive))
	}

	return dst, nil
}

func extractMatching(archive *os.File, binName string, dst string) (int, error) {
	name := archive.Name()
	switch {
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		gzReader, err := gzip.NewReader(archive)
		if err != nil {
			return 0, err
		}
		tarReader := tar.NewReader(gzReader)
		var n int
		for {
			header, err := tarReader.Next()
			if err != nil {
				break
			}
			if header.Typeflag != tar.TypeReg {
				continue
			}
			if !strings.HasSuffix(header.Name, binName) {
				continue
			}
			if err := writeFile(dst, tarReader); err != nil {
				return n, err
			}
			n++
		}
		return n, nil
	case strings.HasSuffix(name, ".zip"):
		stat, err := archive.Stat()
		if err != nil {
			return 0, err
		}
		zipReader, err := zip.NewReader(archive, stat.Size())
		if err != nil {
			return 0, err
		}
		var n int
		for _, entry := range zipReader.File {
			if entry.FileInfo().IsDir() {
				continue
			}
			if !strings.HasSuffix(entry.Name, binName) {
				continue
			}
			reader, err := entry.Open()
			if err != nil {
				return n, err
			}
			err = writeFile(dst, reader)
			_ = reader.Close()
			if err != nil {
				return n, err
			}
			n++
		}
		return n, nil
	}

	return 0, fmt.Errorf("unsupported archive")
}

func writeFile(dst string, r io.Reader) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()
	_, err = io.Copy(out, r)
	return err
}
