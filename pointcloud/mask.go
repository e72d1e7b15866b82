package pointcloud

import (
	"github.com/golang/geo/r3"

	"github.com/cloudseq/cloudseq/spatialmath"
)

// ApplyMask updates the deletion state of target's points. pose places the
// target in world space; regions are defined in world units, so every point is
// transformed through pose before it is tested.
//
// With a region, the oracle is consulted for every point: points the oracle
// marks inside have the deleted bit cleared, every other point within the
// overlap of cloud and oracle result lengths has it set. Other status bits are
// preserved. Points beyond the oracle result are left untouched.
//
// With no region but a reference status slice whose length equals the
// target's, the reference is copied onto the target verbatim, carrying every
// deletion decision forward bit for bit.
//
// Otherwise nothing is mutated. ApplyMask never fails; malformed inputs are
// no-ops.
func ApplyMask(target PointCloud, reference []byte, region spatialmath.Region, oracle spatialmath.Oracle, pose spatialmath.Pose) {
	if target == nil {
		return
	}
	state := target.State()

	if region != nil {
		if oracle == nil {
			oracle = spatialmath.NewOracle()
		}
		local := target.Positions()
		world := make([]r3.Vector, len(local))
		for i, p := range local {
			world[i] = pose.TransformPoint(p)
		}
		inside := oracle.Intersect(region, world)
		n := len(state)
		if len(inside) < n {
			n = len(inside)
		}
		for i := 0; i < n; i++ {
			if inside[i] == spatialmath.InsideSentinel {
				state[i] &^= StateDeleted
			} else {
				state[i] |= StateDeleted
			}
		}
		return
	}

	if reference != nil && len(reference) == len(state) {
		copy(state, reference)
	}
}
