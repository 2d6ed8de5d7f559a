package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/AsaiYusuke/jsonpath"
	"github.com/Masterminds/semver/v3"

	"github.com/sqliteai/aipack/internal/metaerr"
)

// versionsJSONPath selects the release tags from the versions API response.
const versionsJSONPath = "$[*].tag_name"

// ResolveVersion turns the version given on the command line into a
// concrete release version. An explicit version is validated and returned
// as-is; "latest" is resolved by querying `url` for the published
// versions and picking the highest one.
func ResolveVersion(ctx context.Context, client *http.Client, url string, version string) (string, error) {
	if version != "" && version != "latest" {
		if _, err := semver.NewVersion(strings.TrimPrefix(version, "v")); err != nil {
			return "", fmt.Errorf("invalid version %q: %w", version, err)
		}
		return version, nil
	}

	versions, err := GetVersions(ctx, client, url, versionsJSONPath)
	if err != nil {
		return "", metaerr.WithMetadata(fmt.Errorf("get versions: %w", err), "url", url)
	}

	return FindLatestVersion(versions)
}

// GetVersions queries the `url` and filters the response using the JSONPath
// `path` to get a list of versions. It follows Link headers across pages.
func GetVersions(ctx context.Context, client *http.Client, url string, path string) ([]string, error) {
	var versions []string

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, metaerr.WithMetadata(
				fmt.Errorf("%d - %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
				"body", string(body),
			)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}

		var src any
		if err := json.Unmarshal(body, &src); err != nil {
			return nil, fmt.Errorf("unmarshal response body: %w", err)
		}

		vs, err := retrieveVersions(src, path)
		if err != nil {
			return nil, err
		}
		versions = append(versions, vs...)

		nextLink := findNextLink(resp.Header.Values("Link"))
		if nextLink == "" {
			break
		}
		url = nextLink
	}

	return versions, nil
}

// FindLatestVersion returns the highest semantic version from the list.
func FindLatestVersion(versions []string) (string, error) {
	vs := make([]*semver.Version, 0, len(versions))
	for _, raw := range versions {
		v, err := semver.NewVersion(strings.TrimPrefix(raw, "v"))
		if err != nil {
			continue
		}
		vs = append(vs, v)
	}
	if len(vs) == 0 {
		return "", fmt.Errorf("no versions found")
	}

	sort.Sort(sort.Reverse(semver.Collection(vs)))

	// return the original tag, the release URL layout uses it verbatim
	latest := vs[0].Original()
	for _, raw := range versions {
		if strings.TrimPrefix(raw, "v") == latest {
			return raw, nil
		}
	}
	return latest, nil
}

func retrieveVersions(src any, path string) ([]string, error) {
	config := jsonpath.Config{}
	config.SetAccessorMode()

	results, err := jsonpath.Retrieve(path, src, config)
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, result := range results {
		version := result.(jsonpath.Accessor).Get().(string)
		if version == "" {
			continue
		}
		versions = append(versions, version)
	}

	return versions, nil
}

func findNextLink(headers []string) string {
	for _, raw := range headers {
		// Header values may be comma delimited sequences
		for _, header := range strings.Split(raw, ",") {
			var linkURL, linkRel string

			// Link header values have the form: <url>; rel="next"; foo="bar"
			for _, part := range strings.Split(header, ";") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}

				// <url>
				if part[0] == '<' && part[len(part)-1] == '>' {
					linkURL = strings.Trim(part, "<>")
					continue
				}

				// rel="next"
				keyval := strings.SplitN(part, "=", 2)
				if len(keyval) != 2 {
					continue
				} else if strings.ToLower(keyval[0]) == "rel" {
					linkRel = strings.Trim(keyval[1], "\"")
				}
			}

			if strings.ToLower(linkRel) == "next" {
				return linkURL
			}
		}
	}
	return ""
}
