// Package spatialmath defines the spatial types used across the module: poses
// that place a point cloud in the scene and the box/sphere regions used for
// point selection.
package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is the placement of an object in world space: a translation, a
// quaternion rotation, and a per-axis scale.
type Pose struct {
	Position r3.Vector
	Rotation quat.Number
	Scale    r3.Vector
}

// NewZeroPose returns a pose at the origin with no rotation and unit scale.
func NewZeroPose() Pose {
	return Pose{
		Rotation: quat.Number{Real: 1},
		Scale:    r3.Vector{X: 1, Y: 1, Z: 1},
	}
}

// NewPoseFromPoint returns an unrotated, unit-scale pose at the given point.
func NewPoseFromPoint(pt r3.Vector) Pose {
	p := NewZeroPose()
	p.Position = pt
	return p
}

// TransformPoint applies the pose to a point in local coordinates, scaling,
// rotating, then translating it into world coordinates.
func (p Pose) TransformPoint(pt r3.Vector) r3.Vector {
	scaled := r3.Vector{X: pt.X * p.Scale.X, Y: pt.Y * p.Scale.Y, Z: pt.Z * p.Scale.Z}
	rotated := rotateByQuat(p.Rotation, scaled)
	return rotated.Add(p.Position)
}

func (p Pose) String() string {
	return fmt.Sprintf("Position: X:%.1f, Y:%.1f, Z:%.1f | Scale: X:%.2f, Y:%.2f, Z:%.2f",
		p.Position.X, p.Position.Y, p.Position.Z, p.Scale.X, p.Scale.Y, p.Scale.Z)
}

// rotateByQuat rotates v by the unit quaternion q, computing q * v * q^-1.
func rotateByQuat(q quat.Number, v r3.Vector) r3.Vector {
	qv := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	result := quat.Mul(quat.Mul(q, qv), quat.Conj(q))
	return r3.Vector{X: result.Imag, Y: result.Jmag, Z: result.Kmag}
}
