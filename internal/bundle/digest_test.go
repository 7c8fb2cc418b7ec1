package bundle

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestTreeRelativePaths(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "/tree", map[string]string{
		"a.txt":     "alpha",
		"sub/b.txt": "beta",
	})

	d, err := DigestTree(fsys, "/tree")
	require.NoError(t, err)
	require.Len(t, d, 2)
	assert.Contains(t, d, "a.txt")
	assert.Contains(t, d, "sub/b.txt")
	assert.Len(t, d["a.txt"], 64)
	assert.NotEqual(t, d["a.txt"], d["sub/b.txt"])
}

func TestDigestSumDependsOnContent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "/one", map[string]string{"f.txt": "same"})
	writeFiles(t, fsys, "/two", map[string]string{"f.txt": "same"})
	writeFiles(t, fsys, "/three", map[string]string{"f.txt": "different"})

	one, err := DigestTree(fsys, "/one")
	require.NoError(t, err)
	two, err := DigestTree(fsys, "/two")
	require.NoError(t, err)
	three, err := DigestTree(fsys, "/three")
	require.NoError(t, err)

	assert.Equal(t, one.Sum(), two.Sum())
	assert.NotEqual(t, one.Sum(), three.Sum())
}

func TestVerifyAfterCopy(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "/src", map[string]string{
		"a/one.txt":     "1",
		"b/sub/two.txt": "2",
	})
	_, err := CopyAll(fsys, []string{"a", "b"}, "/src", "/dst", nil)
	require.NoError(t, err)

	mismatches, err := Verify(fsys, []string{"a", "b"}, "/src", "/dst")
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestVerifyReportsDrift(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "/src", map[string]string{
		"a/one.txt": "1",
		"a/two.txt": "2",
		"b/x.txt":   "x",
	})
	_, err := CopyAll(fsys, []string{"a"}, "/src", "/dst", nil)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fsys, "/dst/a/one.txt", []byte("tampered"), 0o644))
	require.NoError(t, fsys.Remove("/dst/a/two.txt"))

	mismatches, err := Verify(fsys, []string{"a", "b"}, "/src", "/dst")
	require.NoError(t, err)
	assert.Equal(t, []Mismatch{
		{Demo: "a", Path: "one.txt", Reason: "modified"},
		{Demo: "a", Path: "two.txt", Reason: "missing"},
		{Demo: "b", Path: "x.txt", Reason: "missing"},
	}, mismatches)
}

func TestVerifyMissingSource(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, err := Verify(fsys, []string{"gone"}, "/src", "/dst")
	var missing *SourceMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "gone", missing.Demo)
}

func TestVerifySymlinkedSource(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	fsys := afero.NewOsFs()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	writeFiles(t, fsys, filepath.Join(root, "real"), map[string]string{"index.html": "<html>"})
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(src, "demo")))

	want, err := DigestTree(fsys, filepath.Join(src, "demo"))
	require.NoError(t, err)
	assert.Contains(t, want, "index.html")

	// Nothing copied yet: the linked source must still be compared.
	mismatches, err := Verify(fsys, []string{"demo"}, src, dst)
	require.NoError(t, err)
	assert.Equal(t, []Mismatch{{Demo: "demo", Path: "index.html", Reason: "missing"}}, mismatches)

	_, err = CopyAll(fsys, []string{"demo"}, src, dst, nil)
	require.NoError(t, err)
	mismatches, err = Verify(fsys, []string{"demo"}, src, dst)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestDigestBundleCoversRunOutputOnly(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "/dst", map[string]string{
		"a/main.py":     "a",
		"a/lib/util.py": "u",
		"stale/old.py":  "left over from an earlier run",
		ManifestName:    "pkgA==1.0",
	})

	d, err := DigestBundle(fsys, "/dst", []string{"a"})
	require.NoError(t, err)
	assert.Len(t, d, 3)
	assert.Contains(t, d, "a/main.py")
	assert.Contains(t, d, "a/lib/util.py")
	assert.Contains(t, d, ManifestName)
	assert.NotContains(t, d, "stale/old.py")
}

func TestDigestBundleMissingManifest(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "/dst", map[string]string{"a/main.py": "a"})

	_, err := DigestBundle(fsys, "/dst", []string{"a"})
	assert.ErrorContains(t, err, ManifestName)
}
