// Package pointcloud defines an in-memory point cloud with a per-point status
// byte and provides PLY serialization for it.
//
// The implementation is dense: positions, colors, and status bytes are stored
// in parallel slices indexed by point ordinal. The status byte carries the
// deletion flag consulted during export alongside bits reserved for unrelated
// editor state.
package pointcloud

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"
)

// MetaData is data about what's stored in the point cloud.
type MetaData struct {
	HasColor bool

	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// PointCloud is a general purpose container of points. Every point has a
// position and a status byte; colors are present on all points or none.
type PointCloud interface {
	// Size returns the number of points in the cloud.
	Size() int

	// MetaData returns meta data.
	MetaData() MetaData

	// At returns the position of the point at the given ordinal.
	At(i int) r3.Vector

	// Color returns the color of the point at the given ordinal and whether
	// the cloud carries color at all.
	Color(i int) (color.NRGBA, bool)

	// State returns the per-point status byte slice, one byte per point in
	// ordinal order. The slice aliases the cloud's own storage; mutating it
	// mutates the cloud.
	State() []byte

	// Positions returns the backing position slice in ordinal order.
	Positions() []r3.Vector

	// Append places a new point at the end of the cloud. The color is ignored
	// by clouds constructed without color.
	Append(p r3.Vector, c color.NRGBA, state byte)

	// Iterate iterates over all points in the cloud and calls the given
	// function for each point. If the supplied function returns false,
	// iteration stops.
	Iterate(fn func(i int, p r3.Vector, state byte) bool)
}

// NewMetaData returns metadata with bounds ready to be merged into.
func NewMetaData() MetaData {
	return MetaData{
		MinX: math.MaxFloat64,
		MinY: math.MaxFloat64,
		MinZ: math.MaxFloat64,
		MaxX: -math.MaxFloat64,
		MaxY: -math.MaxFloat64,
		MaxZ: -math.MaxFloat64,
	}
}

// Merge folds a point position into the bounds.
func (meta *MetaData) Merge(v r3.Vector) {
	if v.X > meta.MaxX {
		meta.MaxX = v.X
	}
	if v.Y > meta.MaxY {
		meta.MaxY = v.Y
	}
	if v.Z > meta.MaxZ {
		meta.MaxZ = v.Z
	}

	if v.X < meta.MinX {
		meta.MinX = v.X
	}
	if v.Y < meta.MinY {
		meta.MinY = v.Y
	}
	if v.Z < meta.MinZ {
		meta.MinZ = v.Z
	}
}
