package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	_url "net/url"
	"os"
	"path/filepath"
)

// Download retrieves a release asset from the given url and saves it in
// the given directory under the url's base name.
// It returns the local path to the downloaded file.
func Download(ctx context.Context, client *http.Client, url string, dir string) (string, error) {
	u, err := _url.Parse(url)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	filename := filepath.Base(u.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%d - %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	file, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	_, err = io.Copy(file, resp.Body)
	if err != nil {
		return "", fmt.Errorf("write output file: %w", err)
	}

	return file.Name(), nil
}
