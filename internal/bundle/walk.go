package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrSymlinkLoop is returned when a symbolic link points at one of its own
// ancestor directories.
var ErrSymlinkLoop = errors.New("symbolic link loop")

// WalkFunc is called by WalkTree for the root and every entry below it. rel is
// the OS path relative to the root ("." for the root itself). info always
// describes the link target, never the link.
type WalkFunc func(path, rel string, info fs.FileInfo) error

// WalkTree walks root depth-first in lexical order and follows symbolic links,
// including a root that is itself a link. Unlike afero.Walk it never Lstats
// the root, so a linked tree is walked rather than reported as a single link.
func WalkTree(fsys afero.Fs, root string, fn WalkFunc) error {
	info, err := fsys.Stat(root)
	if err != nil {
		return err
	}
	return walk(fsys, root, ".", info, nil, fn)
}

func walk(fsys afero.Fs, path, rel string, info fs.FileInfo, ancestors []fs.FileInfo, fn WalkFunc) error {
	if info.IsDir() {
		// os.SameFile only matches OS-backed infos; in-memory trees have no links.
		for _, a := range ancestors {
			if os.SameFile(a, info) {
				return fmt.Errorf("%s: %w", path, ErrSymlinkLoop)
			}
		}
	}
	if err := fn(path, rel, info); err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := afero.ReadDir(fsys, path)
	if err != nil {
		return err
	}
	ancestors = append(ancestors[:len(ancestors):len(ancestors)], info)
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		childInfo := entry
		if entry.Mode()&fs.ModeSymlink != 0 {
			if childInfo, err = fsys.Stat(child); err != nil {
				return fmt.Errorf("resolving %s: %w", child, err)
			}
		}
		if err := walk(fsys, child, filepath.Join(rel, entry.Name()), childInfo, ancestors, fn); err != nil {
			return err
		}
	}
	return nil
}
