package bundle

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"golang.org/x/crypto/blake2b"
)

// Digest maps slash-separated paths relative to a tree root to the hex
// BLAKE2b-256 sum of each regular file.
type Digest map[string]string

// DigestTree hashes every regular file under root.
func DigestTree(fsys afero.Fs, root string) (Digest, error) {
	d := make(Digest)
	err := WalkTree(fsys, root, func(p, rel string, info fs.FileInfo) error {
		if !info.Mode().IsRegular() {
			return nil
		}
		sum, err := hashFile(fsys, p)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", p, err)
		}
		d[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DigestBundle hashes what a build run produced under dstRoot: each listed
// demo directory and the manifest. Keys are prefixed with the demo name.
func DigestBundle(fsys afero.Fs, dstRoot string, demos []string) (Digest, error) {
	d := make(Digest)
	for _, demo := range demos {
		sub, err := DigestTree(fsys, filepath.Join(dstRoot, demo))
		if err != nil {
			return nil, err
		}
		for rel, sum := range sub {
			d[path.Join(filepath.ToSlash(demo), rel)] = sum
		}
	}
	manifest := filepath.Join(dstRoot, ManifestName)
	sum, err := hashFile(fsys, manifest)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", manifest, err)
	}
	d[ManifestName] = sum
	return d, nil
}

// Sum folds the digest into a single hex BLAKE2b-256 value that does not
// depend on walk order.
func (d Digest) Sum() string {
	paths := make([]string, 0, len(d))
	for p := range d {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h, _ := blake2b.New256(nil) // only fails for oversized keys
	for _, p := range paths {
		fmt.Fprintf(h, "%s\x00%s\n", p, d[p])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func hashFile(fsys afero.Fs, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Mismatch is one file where the bundle does not mirror the source.
type Mismatch struct {
	Demo   string `json:"demo"`
	Path   string `json:"path"`
	Reason string `json:"reason"` // "missing" or "modified"
}

// Verify checks that dstRoot/<demo> reproduces every file of srcRoot/<demo>
// byte for byte. Extra files in the destination are not reported.
func Verify(fsys afero.Fs, demos []string, srcRoot, dstRoot string) ([]Mismatch, error) {
	var mismatches []Mismatch
	for _, demo := range demos {
		srcDir := filepath.Join(srcRoot, demo)
		if info, err := fsys.Stat(srcDir); err != nil {
			return nil, &SourceMissingError{Demo: demo, Path: srcDir, Err: err}
		} else if !info.IsDir() {
			return nil, &SourceMissingError{Demo: demo, Path: srcDir, Err: errors.New("not a directory")}
		}
		want, err := DigestTree(fsys, srcDir)
		if err != nil {
			return nil, err
		}

		got := Digest{}
		dstDir := filepath.Join(dstRoot, demo)
		if _, err := fsys.Stat(dstDir); err == nil {
			if got, err = DigestTree(fsys, dstDir); err != nil {
				return nil, err
			}
		}

		paths := make([]string, 0, len(want))
		for p := range want {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			sum, ok := got[p]
			switch {
			case !ok:
				mismatches = append(mismatches, Mismatch{Demo: demo, Path: p, Reason: "missing"})
			case sum != want[p]:
				mismatches = append(mismatches, Mismatch{Demo: demo, Path: p, Reason: "modified"})
			}
		}
	}
	return mismatches, nil
}
