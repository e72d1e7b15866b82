package sequence

import (
	"context"
	"io"

	"github.com/cloudseq/cloudseq/pointcloud"
	"github.com/cloudseq/cloudseq/scene"
)

// Importer loads frame files into scene nodes, attaching them to the scene as
// a side effect. Used for interactive frame switching.
type Importer interface {
	Import(ctx context.Context, sc *scene.Scene, files []FrameFile) ([]*scene.Node, error)
}

// AssetLoader loads a frame file into a point cloud without attaching it to
// any scene. Used for the export pipeline's transient frames.
type AssetLoader interface {
	Load(ctx context.Context, file FrameFile) (pointcloud.PointCloud, error)
}

// SerializeSettings controls serialization of one frame.
type SerializeSettings struct {
	// RemoveDeleted physically excludes points whose status has the deleted
	// bit set from the output bytes.
	RemoveDeleted bool
}

// Serializer turns a point cloud into file bytes on a stream.
type Serializer interface {
	Serialize(ctx context.Context, cloud pointcloud.PointCloud, settings SerializeSettings, out io.Writer) error
}

// Store hands out writable handles by name inside some destination, creating
// entries as needed. Each handle must be closed exactly once.
type Store interface {
	Acquire(ctx context.Context, name string) (io.WriteCloser, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Notifier surfaces blocking user-visible notifications.
type Notifier interface {
	Info(message string)
	Error(message string)
}

// ProgressSink receives export progress announcements. Start is called once
// before the first frame, Update after every frame attempt, and End exactly
// once regardless of outcome.
type ProgressSink interface {
	Start(total int)
	Update(done, total int)
	End()
}

// NopNotifier discards notifications.
type NopNotifier struct{}

// Info implements Notifier.
func (NopNotifier) Info(string) {}

// Error implements Notifier.
func (NopNotifier) Error(string) {}

// NopProgress discards progress announcements.
type NopProgress struct{}

// Start implements ProgressSink.
func (NopProgress) Start(int) {}

// Update implements ProgressSink.
func (NopProgress) Update(int, int) {}

// End implements ProgressSink.
func (NopProgress) End() {}

// AlwaysConfirm answers yes to every prompt.
type AlwaysConfirm struct{}

// Confirm implements Confirmer.
func (AlwaysConfirm) Confirm(context.Context, string) (bool, error) {
	return true, nil
}
