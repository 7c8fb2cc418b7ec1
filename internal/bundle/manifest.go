package bundle

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// ManifestName is the file name of the dependency manifest inside the bundle.
const ManifestName = "requirements.txt"

// unpinnedDependencies follow the two caller-supplied requirements, in this order.
var unpinnedDependencies = []string{
	"numpy",
	"pandas",
	"matplotlib",
	"requests",
	"pyyaml",
}

// UnpinnedDependencies returns the fixed dependency names written after the
// pinned requirements.
func UnpinnedDependencies() []string {
	return slices.Clone(unpinnedDependencies)
}

// ManifestLines returns the manifest lines: both requirements verbatim, then
// the unpinned dependencies.
func ManifestLines(primary, secondary string) []string {
	lines := make([]string, 0, 2+len(unpinnedDependencies))
	lines = append(lines, primary, secondary)
	return append(lines, unpinnedDependencies...)
}

// RenderManifest returns the manifest document with surrounding whitespace trimmed.
func RenderManifest(primary, secondary string) string {
	return strings.TrimSpace(strings.Join(ManifestLines(primary, secondary), "\n"))
}

// WriteManifest writes the manifest to dstRoot/ManifestName, replacing any
// previous content, and returns its path. dstRoot must already exist.
func WriteManifest(fsys afero.Fs, dstRoot, primary, secondary string) (string, error) {
	path := filepath.Join(dstRoot, ManifestName)

	info, err := fsys.Stat(dstRoot)
	if err != nil {
		return "", &ManifestWriteError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return "", &ManifestWriteError{Path: path, Err: errors.New("destination is not a directory")}
	}

	if err := afero.WriteFile(fsys, path, []byte(RenderManifest(primary, secondary)), 0o644); err != nil {
		return "", &ManifestWriteError{Path: path, Err: err}
	}
	return path, nil
}
