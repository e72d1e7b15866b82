package sequence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"
	goutils "go.viam.com/utils"

	"github.com/cloudseq/cloudseq/pointcloud"
	"github.com/cloudseq/cloudseq/scene"
)

// fakeImporter is a scriptable Importer: it can block until gated, fail on a
// given file, and report first renders immediately.
type fakeImporter struct {
	mu      sync.Mutex
	loaded  []string
	entered chan string
	gate    chan struct{}
	failOn  string
	render  bool
}

func (f *fakeImporter) Import(ctx context.Context, sc *scene.Scene, files []FrameFile) ([]*scene.Node, error) {
	name := files[0].Name()
	if f.entered != nil {
		f.entered <- name
	}
	if f.gate != nil {
		<-f.gate
	}
	if name == f.failOn {
		return nil, errors.New("importer rejected " + name)
	}
	f.mu.Lock()
	f.loaded = append(f.loaded, name)
	f.mu.Unlock()

	node := scene.NewNode(pointcloud.New())
	sc.Attach(node)
	if f.render {
		node.NotifyRendered()
	}
	return []*scene.Node{node}, nil
}

func (f *fakeImporter) loadedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.loaded))
	copy(out, f.loaded)
	return out
}

func sixFrameRegistry() *Registry {
	r := NewRegistry()
	r.RegisterFrames(framesNamed(
		"f_0.ply", "f_1.ply", "f_2.ply", "f_3.ply", "f_4.ply", "f_5.ply"))
	return r
}

func TestRequestFrameCoalescing(t *testing.T) {
	logger := golog.NewTestLogger(t)
	imp := &fakeImporter{entered: make(chan string, 8), gate: make(chan struct{}), render: true}
	ctrl := NewController(sixFrameRegistry(), scene.New(), imp, logger)

	ctx := context.Background()
	done := make(chan error, 1)
	goutils.PanicCapturingGo(func() {
		done <- ctrl.RequestFrame(ctx, 1)
	})
	<-imp.entered // first load is now in flight

	test.That(t, ctrl.RequestFrame(ctx, 2), test.ShouldBeNil)
	test.That(t, ctrl.RequestFrame(ctx, 5), test.ShouldBeNil)
	test.That(t, ctrl.RequestFrame(ctx, 3), test.ShouldBeNil)
	close(imp.gate)

	test.That(t, <-done, test.ShouldBeNil)
	// exactly one additional load, targeting the last request
	test.That(t, imp.loadedNames(), test.ShouldResemble, []string{"f_1.ply", "f_3.ply"})

	idx, node := ctrl.CurrentFrame()
	test.That(t, idx, test.ShouldEqual, 3)
	test.That(t, node, test.ShouldNotBeNil)
}

func TestRequestFrameOwnershipHandoff(t *testing.T) {
	logger := golog.NewTestLogger(t)
	imp := &fakeImporter{render: true}
	sc := scene.New()
	ctrl := NewController(sixFrameRegistry(), sc, imp, logger)
	ctx := context.Background()

	test.That(t, ctrl.RequestFrame(ctx, 0), test.ShouldBeNil)
	_, n0 := ctrl.CurrentFrame()
	test.That(t, n0, test.ShouldNotBeNil)
	test.That(t, n0.Released(), test.ShouldBeFalse)

	test.That(t, ctrl.RequestFrame(ctx, 1), test.ShouldBeNil)
	idx, n1 := ctrl.CurrentFrame()
	test.That(t, idx, test.ShouldEqual, 1)
	test.That(t, n1, test.ShouldNotEqual, n0)
	// the predecessor is destroyed exactly once, after its successor rendered
	test.That(t, n0.Released(), test.ShouldBeTrue)
	test.That(t, n1.Released(), test.ShouldBeFalse)
	test.That(t, len(sc.ElementsByKind(scene.KindCloud)), test.ShouldEqual, 1)
}

func TestRequestFrameNoOps(t *testing.T) {
	logger := golog.NewTestLogger(t)
	imp := &fakeImporter{render: true}
	ctrl := NewController(sixFrameRegistry(), scene.New(), imp, logger)
	ctx := context.Background()

	test.That(t, ctrl.RequestFrame(ctx, -1), test.ShouldBeNil)
	test.That(t, ctrl.RequestFrame(ctx, 6), test.ShouldBeNil)
	test.That(t, imp.loadedNames(), test.ShouldBeEmpty)

	test.That(t, ctrl.RequestFrame(ctx, 2), test.ShouldBeNil)
	_, n := ctrl.CurrentFrame()

	// requesting the current frame again does not reload it
	test.That(t, ctrl.RequestFrame(ctx, 2), test.ShouldBeNil)
	idx, same := ctrl.CurrentFrame()
	test.That(t, idx, test.ShouldEqual, 2)
	test.That(t, same, test.ShouldEqual, n)
	test.That(t, imp.loadedNames(), test.ShouldResemble, []string{"f_2.ply"})
}

type declineConfirm struct {
	asked int
}

func (d *declineConfirm) Confirm(context.Context, string) (bool, error) {
	d.asked++
	return false, nil
}

func TestRequestFrameDirtySceneDeclined(t *testing.T) {
	logger := golog.NewTestLogger(t)
	imp := &fakeImporter{render: true}
	sc := scene.New()
	confirm := &declineConfirm{}
	ctrl := NewController(sixFrameRegistry(), sc, imp, logger, WithConfirmer(confirm))
	ctx := context.Background()

	test.That(t, ctrl.RequestFrame(ctx, 0), test.ShouldBeNil)
	_, n0 := ctrl.CurrentFrame()
	sc.MarkDirty()

	// declined: no state change at all
	test.That(t, ctrl.RequestFrame(ctx, 1), test.ShouldBeNil)
	test.That(t, confirm.asked, test.ShouldEqual, 1)
	idx, n := ctrl.CurrentFrame()
	test.That(t, idx, test.ShouldEqual, 0)
	test.That(t, n, test.ShouldEqual, n0)
	test.That(t, n0.Released(), test.ShouldBeFalse)
	test.That(t, sc.Dirty(), test.ShouldBeTrue)
	test.That(t, imp.loadedNames(), test.ShouldResemble, []string{"f_0.ply"})
}

func TestRequestFrameDirtySceneAccepted(t *testing.T) {
	logger := golog.NewTestLogger(t)
	imp := &fakeImporter{render: true}
	sc := scene.New()
	ctrl := NewController(sixFrameRegistry(), sc, imp, logger)
	ctx := context.Background()

	test.That(t, ctrl.RequestFrame(ctx, 0), test.ShouldBeNil)
	_, n0 := ctrl.CurrentFrame()
	sc.MarkDirty()

	test.That(t, ctrl.RequestFrame(ctx, 1), test.ShouldBeNil)
	idx, n1 := ctrl.CurrentFrame()
	test.That(t, idx, test.ShouldEqual, 1)
	test.That(t, n1, test.ShouldNotEqual, n0)
	test.That(t, sc.Dirty(), test.ShouldBeFalse)
	// ownership of the old cloud was dropped with the cleared scene, not
	// destroyed separately
	test.That(t, n0.Released(), test.ShouldBeFalse)
	test.That(t, sc.Contains(n0), test.ShouldBeFalse)
}

func TestRequestFrameLoadFailure(t *testing.T) {
	logger := golog.NewTestLogger(t)
	imp := &fakeImporter{render: true, failOn: "f_1.ply"}
	ctrl := NewController(sixFrameRegistry(), scene.New(), imp, logger)
	ctx := context.Background()

	err := ctrl.RequestFrame(ctx, 1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, FailureKind(err), test.ShouldEqual, KindLoadFailure)

	idx, node := ctrl.CurrentFrame()
	test.That(t, idx, test.ShouldEqual, -1)
	test.That(t, node, test.ShouldBeNil)

	// the in-flight flag was cleared; later requests work
	test.That(t, ctrl.RequestFrame(ctx, 2), test.ShouldBeNil)
	idx, _ = ctrl.CurrentFrame()
	test.That(t, idx, test.ShouldEqual, 2)
}

func TestRequestFrameRenderTimeout(t *testing.T) {
	logger := golog.NewTestLogger(t)
	clk := clock.NewMock()
	imp := &fakeImporter{render: false}
	sc := scene.New()
	ctrl := NewController(sixFrameRegistry(), sc, imp, logger,
		WithClock(clk), WithRenderTimeout(time.Second))

	errCh := make(chan error, 1)
	goutils.PanicCapturingGo(func() {
		errCh <- ctrl.RequestFrame(context.Background(), 0)
	})

	var err error
waiting:
	for {
		select {
		case err = <-errCh:
			break waiting
		default:
			clk.Add(time.Second)
			time.Sleep(time.Millisecond)
		}
	}
	test.That(t, FailureKind(err), test.ShouldEqual, KindRenderTimeout)

	// the failed frame was not adopted and left the scene
	idx, node := ctrl.CurrentFrame()
	test.That(t, idx, test.ShouldEqual, -1)
	test.That(t, node, test.ShouldBeNil)
	test.That(t, len(sc.ElementsByKind(scene.KindCloud)), test.ShouldEqual, 0)
}

func TestRequestFrameContextCanceled(t *testing.T) {
	logger := golog.NewTestLogger(t)
	imp := &fakeImporter{render: false}
	ctrl := NewController(sixFrameRegistry(), scene.New(), imp, logger)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	goutils.PanicCapturingGo(func() {
		errCh <- ctrl.RequestFrame(ctx, 0)
	})
	cancel()

	err := <-errCh
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}
