package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestBoxContains(t *testing.T) {
	b, err := NewBox(r3.Vector{X: 1, Y: 1, Z: 1}, r3.Vector{X: 2, Y: 2, Z: 2})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, b.Contains(r3.Vector{X: 1, Y: 1, Z: 1}), test.ShouldBeTrue)
	test.That(t, b.Contains(r3.Vector{X: 2, Y: 2, Z: 2}), test.ShouldBeTrue)
	test.That(t, b.Contains(r3.Vector{X: 2.01, Y: 1, Z: 1}), test.ShouldBeFalse)
	test.That(t, b.Contains(r3.Vector{X: 0, Y: 0, Z: 0}), test.ShouldBeTrue)
	test.That(t, b.Contains(r3.Vector{X: -0.01, Y: 0, Z: 0}), test.ShouldBeFalse)

	_, err = NewBox(r3.Vector{}, r3.Vector{X: -1, Y: 1, Z: 1})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSphereContains(t *testing.T) {
	s, err := NewSphere(r3.Vector{X: 0, Y: 3, Z: 0}, 2)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, s.Contains(r3.Vector{X: 0, Y: 3, Z: 0}), test.ShouldBeTrue)
	test.That(t, s.Contains(r3.Vector{X: 0, Y: 5, Z: 0}), test.ShouldBeTrue)
	test.That(t, s.Contains(r3.Vector{X: 0, Y: 5.1, Z: 0}), test.ShouldBeFalse)
	test.That(t, s.Contains(r3.Vector{X: 1, Y: 4, Z: 1}), test.ShouldBeTrue)

	_, err = NewSphere(r3.Vector{}, -1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOracleIntersect(t *testing.T) {
	s, err := NewSphere(r3.Vector{}, 1)
	test.That(t, err, test.ShouldBeNil)

	oracle := NewOracle()
	result := oracle.Intersect(s, []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 2, Y: 0, Z: 0},
		{X: 0, Y: 0.5, Z: 0},
	})
	test.That(t, result, test.ShouldResemble, []byte{InsideSentinel, 0, InsideSentinel})

	result = oracle.Intersect(nil, []r3.Vector{{X: 0, Y: 0, Z: 0}})
	test.That(t, result, test.ShouldResemble, []byte{0})
}

func TestPoseTransformPoint(t *testing.T) {
	p := NewZeroPose()
	pt := r3.Vector{X: 1, Y: 2, Z: 3}
	test.That(t, p.TransformPoint(pt), test.ShouldResemble, pt)

	p.Position = r3.Vector{X: 10, Y: 0, Z: 0}
	test.That(t, p.TransformPoint(pt), test.ShouldResemble, r3.Vector{X: 11, Y: 2, Z: 3})

	p.Scale = r3.Vector{X: 2, Y: 2, Z: 2}
	test.That(t, p.TransformPoint(pt), test.ShouldResemble, r3.Vector{X: 12, Y: 4, Z: 6})

	// rotate a quarter turn about Z
	halfTheta := math.Pi / 4
	rot := NewZeroPose()
	rot.Rotation = quat.Number{Real: math.Cos(halfTheta), Kmag: math.Sin(halfTheta)}
	got := rot.TransformPoint(r3.Vector{X: 1, Y: 0, Z: 0})
	test.That(t, got.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, got.Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, got.Z, test.ShouldAlmostEqual, 0, 1e-9)
}
