// Package publish uploads a built bundle directory to a storage backend.
package publish

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/allyourbase/demobundle/internal/bundle"
	"github.com/spf13/afero"
)

// Backend stores bundle files under slash-separated keys.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
}

// Summary counts what a Publish call uploaded.
type Summary struct {
	Files int
	Bytes int64
}

// Publish uploads every regular file under root to b, keyed by prefix plus the
// file's path relative to root. It stops at the first failed upload or when
// ctx is cancelled.
func Publish(ctx context.Context, fsys afero.Fs, root, prefix string, b Backend, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var sum Summary

	info, err := fsys.Stat(root)
	if err != nil {
		return sum, fmt.Errorf("bundle directory: %w", err)
	}
	if !info.IsDir() {
		return sum, fmt.Errorf("bundle directory %s is not a directory", root)
	}

	err = bundle.WalkTree(fsys, root, func(p, rel string, info fs.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		key := ObjectKey(prefix, rel)

		f, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := b.Put(ctx, key, f, info.Size()); err != nil {
			return fmt.Errorf("uploading %s: %w", key, err)
		}
		logger.Debug("file published", "key", key, "size", info.Size())
		sum.Files++
		sum.Bytes += info.Size()
		return nil
	})
	return sum, err
}

// ObjectKey joins prefix and a relative OS path into a slash-separated key.
func ObjectKey(prefix, rel string) string {
	rel = filepath.ToSlash(rel)
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}
