package sequence

import (
	"regexp"
	"sort"
	"strconv"
	"sync"
)

// frameOrdinalPattern matches the digits closest to the extension: optional
// prefix, digits, optional non-digit suffix marker, required extension.
var frameOrdinalPattern = regexp.MustCompile(`(\d+)\D*\.[^.]+$`)

// frameOrdinal extracts the trailing integer embedded in a frame file name.
// The second return is false when the name has no parseable number.
func frameOrdinal(name string) (int, bool) {
	m := frameOrdinalPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// digits too large for an int; treat as unnumbered
		return 0, false
	}
	return n, true
}

// Registry holds the ordered frame sequence. Registration sorts the files by
// the trailing integer in their names and replaces the whole sequence;
// observers are told the new frame count after every registration.
type Registry struct {
	mu        sync.Mutex
	frames    []FrameFile
	observers []func(count int)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// OnCount registers an observer called with the frame count after each
// registration.
func (r *Registry) OnCount(fn func(count int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// RegisterFrames sorts the given files by their trailing integer using
// numeric comparison and replaces the stored sequence. Files without a
// parseable number compare equal to any neighbor and keep their relative
// input order. Idempotent on identical input.
func (r *Registry) RegisterFrames(files []FrameFile) {
	sorted := make([]FrameFile, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		ni, iOK := frameOrdinal(sorted[i].Name())
		nj, jOK := frameOrdinal(sorted[j].Name())
		if !iOK || !jOK {
			return false
		}
		return ni < nj
	})

	r.mu.Lock()
	r.frames = sorted
	observers := make([]func(int), len(r.observers))
	copy(observers, r.observers)
	count := len(sorted)
	r.mu.Unlock()

	for _, fn := range observers {
		fn(count)
	}
}

// Len returns the number of registered frames.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Frame returns the frame at the given index. The second return is false when
// the index is out of range.
func (r *Registry) Frame(i int) (FrameFile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.frames) {
		return nil, false
	}
	return r.frames[i], true
}

// Frames returns a copy of the ordered sequence.
func (r *Registry) Frames() []FrameFile {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FrameFile, len(r.frames))
	copy(out, r.frames)
	return out
}
