// Package sequence coordinates a time-ordered sequence of point cloud frame
// files: the sorted frame registry, the interactive frame controller, and the
// batch export pipeline that propagates deletion masks across every frame.
package sequence

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// FrameFile is one frame's source: a name and a byte source. Immutable once
// registered; identity is the name.
type FrameFile interface {
	// Name returns the file name, extension included.
	Name() string

	// Open returns a fresh reader over the frame's bytes.
	Open() (io.ReadCloser, error)
}

type diskFrame struct {
	path string
}

// NewDiskFrame returns a frame backed by a file on disk.
func NewDiskFrame(path string) FrameFile {
	return &diskFrame{path: path}
}

func (f *diskFrame) Name() string {
	return filepath.Base(f.path)
}

func (f *diskFrame) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

type memoryFrame struct {
	name string
	data []byte
}

// NewMemoryFrame returns a frame backed by an in-memory byte slice.
func NewMemoryFrame(name string, data []byte) FrameFile {
	return &memoryFrame{name: name, data: data}
}

func (f *memoryFrame) Name() string {
	return f.name
}

func (f *memoryFrame) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
