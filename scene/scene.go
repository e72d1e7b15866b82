// Package scene models the live element graph a frame is displayed in: point
// cloud nodes with a placement and a first-render signal, plus the helper
// shapes used to define spatial selections.
package scene

import (
	"sync"

	"github.com/golang/geo/r3"
)

// Kind identifies what a scene element is.
type Kind int

const (
	// KindCloud is a point cloud node.
	KindCloud Kind = iota
	// KindBoxHelper is a box-shaped selection helper.
	KindBoxHelper
	// KindSphereHelper is a sphere-shaped selection helper.
	KindSphereHelper
)

// Element is anything that can be attached to a scene.
type Element interface {
	Kind() Kind
}

// BoxHelper is a box-shaped selection helper with a world center and full
// extents per axis.
type BoxHelper struct {
	Center r3.Vector
	Size   r3.Vector
}

// Kind implements Element.
func (BoxHelper) Kind() Kind { return KindBoxHelper }

// SphereHelper is a sphere-shaped selection helper with a world center and
// radius.
type SphereHelper struct {
	Center r3.Vector
	Radius float64
}

// Kind implements Element.
func (SphereHelper) Kind() Kind { return KindSphereHelper }

// Scene is a container of elements with a dirty flag tracking unsaved
// modifications.
type Scene struct {
	mu       sync.Mutex
	elements []Element
	dirty    bool
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// Attach adds an element to the scene.
func (s *Scene) Attach(e Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = append(s.elements, e)
}

// Detach removes an element from the scene. Detaching an element that is not
// attached does nothing.
func (s *Scene) Detach(e Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.elements {
		if existing == e {
			s.elements = append(s.elements[:i], s.elements[i+1:]...)
			return
		}
	}
}

// Contains reports whether the element is attached to the scene.
func (s *Scene) Contains(e Element) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.elements {
		if existing == e {
			return true
		}
	}
	return false
}

// ElementsByKind returns all attached elements of the given kind in
// attachment order.
func (s *Scene) ElementsByKind(kind Kind) []Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Element
	for _, e := range s.elements {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// Clear detaches every element and resets the dirty flag.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = nil
	s.dirty = false
}

// Dirty reports whether the scene has unsaved modifications.
func (s *Scene) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkDirty flags the scene as having unsaved modifications.
func (s *Scene) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
}
