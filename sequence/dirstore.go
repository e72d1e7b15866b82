package sequence

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// dirStore hands out file handles inside an OS directory, creating the
// directory on first use.
type dirStore struct {
	dir string
}

// NewDirStore returns a Store writing into the given directory.
func NewDirStore(dir string) Store {
	return &dirStore{dir: dir}
}

func (s *dirStore) Acquire(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	//nolint:gosec
	return os.Create(filepath.Join(s.dir, filepath.Base(name)))
}
