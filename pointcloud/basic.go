package pointcloud

import (
	"image/color"

	"github.com/golang/geo/r3"
)

// basicPointCloud is the dense implementation of the PointCloud interface
// backed by parallel slices.
type basicPointCloud struct {
	positions []r3.Vector
	colors    []color.NRGBA
	state     []byte
	hasColor  bool
	meta      MetaData
}

// New returns an empty PointCloud without color storage.
func New() PointCloud {
	return NewWithPrealloc(0, false)
}

// NewWithPrealloc returns an empty, preallocated PointCloud. hasColor decides
// whether per-point colors are stored.
func NewWithPrealloc(size int, hasColor bool) PointCloud {
	cloud := &basicPointCloud{
		positions: make([]r3.Vector, 0, size),
		state:     make([]byte, 0, size),
		hasColor:  hasColor,
		meta:      NewMetaData(),
	}
	cloud.meta.HasColor = hasColor
	if hasColor {
		cloud.colors = make([]color.NRGBA, 0, size)
	}
	return cloud
}

func (cloud *basicPointCloud) Size() int {
	return len(cloud.positions)
}

func (cloud *basicPointCloud) MetaData() MetaData {
	return cloud.meta
}

func (cloud *basicPointCloud) At(i int) r3.Vector {
	return cloud.positions[i]
}

func (cloud *basicPointCloud) Color(i int) (color.NRGBA, bool) {
	if !cloud.hasColor {
		return color.NRGBA{}, false
	}
	return cloud.colors[i], true
}

func (cloud *basicPointCloud) State() []byte {
	return cloud.state
}

func (cloud *basicPointCloud) Positions() []r3.Vector {
	return cloud.positions
}

func (cloud *basicPointCloud) Append(p r3.Vector, c color.NRGBA, state byte) {
	cloud.positions = append(cloud.positions, p)
	cloud.state = append(cloud.state, state)
	if cloud.hasColor {
		cloud.colors = append(cloud.colors, c)
	}
	cloud.meta.Merge(p)
}

func (cloud *basicPointCloud) Iterate(fn func(i int, p r3.Vector, state byte) bool) {
	for i, p := range cloud.positions {
		if !fn(i, p, cloud.state[i]) {
			return
		}
	}
}
