package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// LocalBackend writes objects as files under Root.
type LocalBackend struct {
	Fs   afero.Fs
	Root string
}

// NewLocalBackend returns a LocalBackend on the OS file system.
func NewLocalBackend(root string) *LocalBackend {
	return &LocalBackend{Fs: afero.NewOsFs(), Root: root}
}

func (b *LocalBackend) Put(ctx context.Context, key string, r io.Reader, _ int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(b.Root, filepath.FromSlash(key))
	rel, err := filepath.Rel(b.Root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("key %q escapes %s", key, b.Root)
	}
	if err := b.Fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := b.Fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
