package spatialmath

import "github.com/golang/geo/r3"

// InsideSentinel is the byte an oracle reports for a point fully inside the
// queried region. Any other value means outside or partial.
const InsideSentinel byte = 255

// Oracle answers point-in-region queries for a batch of positions, one byte
// per position. It is the boundary behind which alternative intersection
// implementations (octree-accelerated, GPU) can be substituted.
type Oracle interface {
	Intersect(region Region, positions []r3.Vector) []byte
}

type regionOracle struct{}

// NewOracle returns the default oracle, which tests each position directly
// against the region.
func NewOracle() Oracle {
	return regionOracle{}
}

func (regionOracle) Intersect(region Region, positions []r3.Vector) []byte {
	result := make([]byte, len(positions))
	if region == nil {
		return result
	}
	for i, pt := range positions {
		if region.Contains(pt) {
			result[i] = InsideSentinel
		}
	}
	return result
}
