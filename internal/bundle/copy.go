package bundle

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CopyTree recursively copies the directory src into dst. Missing destination
// directories are created and existing destination files are overwritten.
// Files that exist only in dst are left alone.
func CopyTree(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return &SourceMissingError{Path: src, Err: err}
	}
	if !info.IsDir() {
		return &SourceMissingError{Path: src, Err: errors.New("not a directory")}
	}

	// Links are followed so the bundle holds content, not links.
	return WalkTree(fsys, src, func(path, rel string, info fs.FileInfo) error {
		target := filepath.Join(dst, rel)
		switch {
		case info.IsDir():
			if err := fsys.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
		case info.Mode().IsRegular():
			if err := copyFile(fsys, path, target, info.Mode().Perm()); err != nil {
				return fmt.Errorf("copying %s: %w", path, err)
			}
		}
		return nil
	})
}

// copyFile writes src over dst. A destination that cannot be opened for
// writing (read-only file) is removed and recreated.
func copyFile(fsys afero.Fs, src, dst string, mode os.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	const flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	out, err := fsys.OpenFile(dst, flags, mode)
	if errors.Is(err, fs.ErrPermission) {
		if rmErr := fsys.Remove(dst); rmErr == nil {
			out, err = fsys.OpenFile(dst, flags, mode)
		}
	}
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CopyAll copies srcRoot/<demo> to dstRoot/<demo> for every demo, in order.
// It stops at the first failure and returns the demos copied before it.
// Nothing already copied is rolled back.
func CopyAll(fsys afero.Fs, demos []string, srcRoot, dstRoot string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	copied := make([]string, 0, len(demos))
	for _, demo := range demos {
		src := filepath.Join(srcRoot, demo)
		dst := filepath.Join(dstRoot, demo)
		if err := CopyTree(fsys, src, dst); err != nil {
			var missing *SourceMissingError
			if errors.As(err, &missing) {
				missing.Demo = demo
			}
			return copied, fmt.Errorf("copying demo %q: %w", demo, err)
		}
		logger.Debug("demo copied", "demo", demo, "src", src, "dst", dst)
		copied = append(copied, demo)
	}
	return copied, nil
}
