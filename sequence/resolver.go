package sequence

import (
	"github.com/cloudseq/cloudseq/scene"
	"github.com/cloudseq/cloudseq/spatialmath"
)

// ResolveActiveSelector scans the scene's helper elements for a spatial
// selection. Box helpers win over sphere helpers; within a kind the first
// attached helper is taken. Returns nil when there is no scene or no helper.
func ResolveActiveSelector(sc *scene.Scene) spatialmath.Region {
	if sc == nil {
		return nil
	}

	for _, e := range sc.ElementsByKind(scene.KindBoxHelper) {
		helper, ok := e.(scene.BoxHelper)
		if !ok {
			continue
		}
		return spatialmath.Box{Center: helper.Center, Size: helper.Size}
	}

	for _, e := range sc.ElementsByKind(scene.KindSphereHelper) {
		helper, ok := e.(scene.SphereHelper)
		if !ok {
			continue
		}
		return spatialmath.Sphere{Center: helper.Center, Radius: helper.Radius}
	}

	return nil
}
