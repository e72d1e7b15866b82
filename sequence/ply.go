package sequence

import (
	"context"
	"io"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/cloudseq/cloudseq/pointcloud"
	"github.com/cloudseq/cloudseq/scene"
)

// plyLoader is the default AssetLoader and Importer, decoding frame bytes as
// ply.
type plyLoader struct {
	logger golog.Logger
}

// NewPLYLoader returns a loader decoding frame files as ply.
func NewPLYLoader(logger golog.Logger) AssetLoader {
	return &plyLoader{logger: logger}
}

func (l *plyLoader) Load(ctx context.Context, file FrameFile) (_ pointcloud.PointCloud, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := file.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %q", file.Name())
	}
	defer func() {
		err = multierr.Combine(err, r.Close())
	}()

	cloud, err := pointcloud.ReadPLY(r)
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding %q", file.Name())
	}
	return cloud, nil
}

// plyImporter loads frames into scene nodes. It marks each node rendered
// immediately, which stands in for the renderer's first-sort signal when no
// real renderer is attached (headless CLI, tests).
type plyImporter struct {
	loader AssetLoader
}

// NewPLYImporter returns an importer that attaches loaded clouds to the scene
// and reports them rendered at once.
func NewPLYImporter(logger golog.Logger) Importer {
	return &plyImporter{loader: NewPLYLoader(logger)}
}

func (imp *plyImporter) Import(ctx context.Context, sc *scene.Scene, files []FrameFile) ([]*scene.Node, error) {
	nodes := make([]*scene.Node, 0, len(files))
	for _, file := range files {
		cloud, err := imp.loader.Load(ctx, file)
		if err != nil {
			return nil, err
		}
		node := scene.NewNode(cloud)
		sc.Attach(node)
		node.NotifyRendered()
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// plySerializer is the default Serializer, encoding clouds as binary ply.
type plySerializer struct {
	format pointcloud.PLYFormat
}

// NewPLYSerializer returns a serializer writing the given ply format.
func NewPLYSerializer(format pointcloud.PLYFormat) Serializer {
	return &plySerializer{format: format}
}

func (s *plySerializer) Serialize(
	ctx context.Context,
	cloud pointcloud.PointCloud,
	settings SerializeSettings,
	out io.Writer,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return pointcloud.WritePLY(cloud, out, pointcloud.WriteSettings{
		Format:        s.format,
		RemoveDeleted: settings.RemoveDeleted,
	})
}
