package main

import (
	"fmt"
	"sort"
	"strings"
)

// Platform describes one supported wheel platform: the release artifacts
// published for it, the shared library each artifact contains, and the
// package index classifier for its operating system.
type Platform struct {
	Name       string
	Artifacts  []string
	BinaryName string
	Classifier string
}

// platforms maps a wheel platform tag to its build parameters.
// The macOS artifacts are universal, so both macOS tags share one artifact.
var platforms = map[string]Platform{
	"manylinux2014_x86_64": {
		Name:       "manylinux2014_x86_64",
		Artifacts:  []string{"ai-linux-cpu-x86_64", "ai-linux-gpu-x86_64"},
		BinaryName: "ai.so",
		Classifier: "Operating System :: POSIX :: Linux",
	},
	"manylinux2014_aarch64": {
		Name:       "manylinux2014_aarch64",
		Artifacts:  []string{"ai-linux-cpu-arm64", "ai-linux-gpu-arm64"},
		BinaryName: "ai.so",
		Classifier: "Operating System :: POSIX :: Linux",
	},
	"win_amd64": {
		Name:       "win_amd64",
		Artifacts:  []string{"ai-windows-cpu-x86_64", "ai-windows-gpu-x86_64"},
		BinaryName: "ai.dll",
		Classifier: "Operating System :: Microsoft :: Windows",
	},
	"macosx_10_9_x86_64": {
		Name:       "macosx_10_9_x86_64",
		Artifacts:  []string{"ai-macos"},
		BinaryName: "ai.dylib",
		Classifier: "Operating System :: MacOS",
	},
	"macosx_11_0_arm64": {
		Name:       "macosx_11_0_arm64",
		Artifacts:  []string{"ai-macos"},
		BinaryName: "ai.dylib",
		Classifier: "Operating System :: MacOS",
	},
}

// LookupPlatform returns the build parameters for the given platform tag.
func LookupPlatform(name string) (Platform, error) {
	p, ok := platforms[strings.ToLower(name)]
	if !ok {
		return Platform{}, fmt.Errorf("unknown platform: %s (known: %s)", name, strings.Join(PlatformNames(), ", "))
	}
	return p, nil
}

// PlatformNames returns the supported platform tags in sorted order.
func PlatformNames() []string {
	names := make([]string, 0, len(platforms))
	for name := range platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// variantDir returns the binaries subdirectory an artifact is staged
// into, based on whether it is a gpu or cpu build.
func variantDir(artifact string) string {
	if strings.Contains(artifact, "gpu") {
		return "gpu"
	}
	return "cpu"
}
