package sequence

import (
	"testing"

	"go.viam.com/test"
)

func namesOf(files []FrameFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name()
	}
	return out
}

func framesNamed(names ...string) []FrameFile {
	out := make([]FrameFile, len(names))
	for i, n := range names {
		out[i] = NewMemoryFrame(n, nil)
	}
	return out
}

func TestFrameOrdinal(t *testing.T) {
	n, ok := frameOrdinal("frame_0042.ply")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, n, test.ShouldEqual, 42)

	// digits closest to the extension win
	n, ok = frameOrdinal("take2_frame_0007.ply")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, n, test.ShouldEqual, 7)

	// a non-digit marker between the number and the extension is allowed
	n, ok = frameOrdinal("scan_004_final.ply")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, n, test.ShouldEqual, 4)

	_, ok = frameOrdinal("untitled.ply")
	test.That(t, ok, test.ShouldBeFalse)

	_, ok = frameOrdinal("frame_12")
	test.That(t, ok, test.ShouldBeFalse)
}

func TestRegisterFramesNumericOrder(t *testing.T) {
	r := NewRegistry()
	r.RegisterFrames(framesNamed("frame_10.ply", "frame_2.ply", "frame_1.ply", "frame_0003.ply"))

	test.That(t, namesOf(r.Frames()), test.ShouldResemble,
		[]string{"frame_1.ply", "frame_2.ply", "frame_0003.ply", "frame_10.ply"})
	test.That(t, r.Len(), test.ShouldEqual, 4)
}

func TestRegisterFramesUnnumberedKeepOrder(t *testing.T) {
	r := NewRegistry()
	r.RegisterFrames(framesNamed("b.ply", "a.ply", "frame_1.ply", "c.ply"))

	got := namesOf(r.Frames())
	// unnumbered files compare equal to every neighbor, so the stable sort
	// leaves them in their relative input positions
	test.That(t, got, test.ShouldResemble, []string{"b.ply", "a.ply", "frame_1.ply", "c.ply"})
}

func TestRegisterFramesAnnouncesCount(t *testing.T) {
	r := NewRegistry()
	var counts []int
	r.OnCount(func(n int) {
		counts = append(counts, n)
	})

	files := framesNamed("frame_2.ply", "frame_1.ply")
	r.RegisterFrames(files)
	r.RegisterFrames(files)

	test.That(t, counts, test.ShouldResemble, []int{2, 2})
	test.That(t, namesOf(r.Frames()), test.ShouldResemble, []string{"frame_1.ply", "frame_2.ply"})
}

func TestRegistryFrameLookup(t *testing.T) {
	r := NewRegistry()
	r.RegisterFrames(framesNamed("frame_1.ply", "frame_2.ply"))

	f, ok := r.Frame(0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, f.Name(), test.ShouldEqual, "frame_1.ply")

	_, ok = r.Frame(-1)
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = r.Frame(2)
	test.That(t, ok, test.ShouldBeFalse)
}
