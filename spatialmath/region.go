package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Region is a closed set of spatial selection shapes. The only implementations
// are Box and Sphere; callers switch on the concrete type or use Contains.
type Region interface {
	// Contains reports whether the world-space point lies inside the region.
	Contains(pt r3.Vector) bool

	fmt.Stringer

	// region closes the set of implementations.
	region()
}

// Box is an axis-aligned selection region defined by a world center and full
// extents along each axis.
type Box struct {
	Center r3.Vector
	Size   r3.Vector
}

// NewBox returns a box region. Negative extents are not allowed.
func NewBox(center, size r3.Vector) (Box, error) {
	if size.X < 0 || size.Y < 0 || size.Z < 0 {
		return Box{}, fmt.Errorf("box dimensions must be non-negative, got %v", size)
	}
	return Box{Center: center, Size: size}, nil
}

func (b Box) region() {}

// Contains reports whether the point is within the box, boundary inclusive.
func (b Box) Contains(pt r3.Vector) bool {
	d := pt.Sub(b.Center)
	return math.Abs(d.X) <= b.Size.X/2 &&
		math.Abs(d.Y) <= b.Size.Y/2 &&
		math.Abs(d.Z) <= b.Size.Z/2
}

func (b Box) String() string {
	return fmt.Sprintf("Type: Box | Center: X:%.1f, Y:%.1f, Z:%.1f | Dims: X:%.1f, Y:%.1f, Z:%.1f",
		b.Center.X, b.Center.Y, b.Center.Z, b.Size.X, b.Size.Y, b.Size.Z)
}

// Sphere is a selection region defined by a world center and a radius.
type Sphere struct {
	Center r3.Vector
	Radius float64
}

// NewSphere returns a sphere region. A negative radius is not allowed.
func NewSphere(center r3.Vector, radius float64) (Sphere, error) {
	if radius < 0 {
		return Sphere{}, fmt.Errorf("sphere radius must be non-negative, got %f", radius)
	}
	return Sphere{Center: center, Radius: radius}, nil
}

func (s Sphere) region() {}

// Contains reports whether the point is within the sphere, boundary inclusive.
func (s Sphere) Contains(pt r3.Vector) bool {
	return pt.Sub(s.Center).Norm() <= s.Radius
}

func (s Sphere) String() string {
	return fmt.Sprintf("Type: Sphere | Center: X:%.1f, Y:%.1f, Z:%.1f | Radius: %.1f",
		s.Center.X, s.Center.Y, s.Center.Z, s.Radius)
}
