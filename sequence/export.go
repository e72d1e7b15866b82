package sequence

import (
	"context"
	"fmt"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"

	"github.com/cloudseq/cloudseq/pointcloud"
	"github.com/cloudseq/cloudseq/scene"
	"github.com/cloudseq/cloudseq/spatialmath"
)

// Exporter batch-processes every registered frame into a destination store,
// propagating the live frame's deletion mask onto each frame before it is
// written out.
type Exporter struct {
	logger     golog.Logger
	registry   *Registry
	scene      *scene.Scene
	controller *Controller
	loader     AssetLoader
	serializer Serializer
	oracle     spatialmath.Oracle
	notifier   Notifier
	progress   ProgressSink
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithNotifier sets the collaborator surfacing success and failure
// notifications. The default discards them.
func WithNotifier(n Notifier) ExporterOption {
	return func(e *Exporter) {
		e.notifier = n
	}
}

// WithProgress sets the collaborator receiving progress announcements. The
// default discards them.
func WithProgress(p ProgressSink) ExporterOption {
	return func(e *Exporter) {
		e.progress = p
	}
}

// WithOracle substitutes the intersection oracle used for selector masks.
func WithOracle(o spatialmath.Oracle) ExporterOption {
	return func(e *Exporter) {
		e.oracle = o
	}
}

// NewExporter returns an exporter over the controller's registry and scene.
func NewExporter(
	controller *Controller,
	loader AssetLoader,
	serializer Serializer,
	logger golog.Logger,
	opts ...ExporterOption,
) *Exporter {
	e := &Exporter{
		logger:     logger,
		registry:   controller.registry,
		scene:      controller.scene,
		controller: controller,
		loader:     loader,
		serializer: serializer,
		oracle:     spatialmath.NewOracle(),
		notifier:   NopNotifier{},
		progress:   NopProgress{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportSequence writes every registered frame to dest, one output file per
// input frame name. Frames are processed strictly in ascending index order
// with no overlap. The live frame's placement is snapshotted once and
// reapplied to every loaded frame; its deletion state is carried onto each
// frame through the active selector when one exists, or by direct copy when
// the status lengths match. The first unrecovered error stops the run; files
// already written stay valid.
func (e *Exporter) ExportSequence(ctx context.Context, dest Store) error {
	total := e.registry.Len()
	_, liveNode := e.controller.CurrentFrame()
	if total == 0 || liveNode == nil || liveNode.Cloud() == nil || !e.scene.Contains(liveNode) {
		e.logger.Warnw("nothing to export", "frames", total, "liveFrame", liveNode != nil)
		return nil
	}

	selector := ResolveActiveSelector(e.scene)
	refPose := liveNode.Pose()
	// borrowed read-only as the mask source, never mutated
	refState := liveNode.Cloud().State()

	e.logger.Infow("export starting", "frames", total, "selector", selector != nil)
	e.progress.Start(total)
	defer e.progress.End()

	for i := 0; i < total; i++ {
		err := e.exportFrame(ctx, i, total, dest, selector, refPose, refState)
		if err != nil {
			e.notifier.Error(err.Error())
			return err
		}
	}

	e.notifier.Info(fmt.Sprintf("exported %d frames", total))
	return nil
}

// exportFrame processes a single frame: load, reposition, mask, serialize.
// The transient cloud is detached and released before the function returns,
// and progress is reported whether the frame succeeded or failed.
func (e *Exporter) exportFrame(
	ctx context.Context,
	idx, total int,
	dest Store,
	selector spatialmath.Region,
	refPose spatialmath.Pose,
	refState []byte,
) (err error) {
	defer e.progress.Update(idx+1, total)

	file, ok := e.registry.Frame(idx)
	if !ok {
		return NewFailure(KindExportIO, nil, fmt.Sprintf("frame %d disappeared from the registry", idx))
	}

	cloud, err := e.loader.Load(ctx, file)
	if err != nil {
		return NewFailure(KindLoadFailure, err, file.Name())
	}

	node := scene.NewNode(cloud)
	e.scene.Attach(node)
	defer func() {
		e.scene.Detach(node)
		node.Release()
	}()

	node.SetPose(refPose)
	node.InvalidateBounds()

	if selector != nil {
		// selectors live in world space; the node's pose carries the
		// reference placement onto this frame's points
		pointcloud.ApplyMask(cloud, nil, selector, e.oracle, node.Pose())
	} else if len(refState) == cloud.Size() {
		pointcloud.ApplyMask(cloud, refState, nil, nil, refPose)
	}

	w, err := dest.Acquire(ctx, file.Name())
	if err != nil {
		return NewFailure(KindExportIO, err, file.Name())
	}

	serr := e.serializer.Serialize(ctx, cloud, SerializeSettings{RemoveDeleted: true}, w)
	cerr := w.Close()
	if serr != nil || cerr != nil {
		return NewFailure(KindExportIO, multierr.Combine(serr, cerr), file.Name())
	}
	return nil
}
