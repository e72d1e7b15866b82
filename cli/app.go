package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"github.com/cloudseq/cloudseq/pointcloud"
	"github.com/cloudseq/cloudseq/scene"
	"github.com/cloudseq/cloudseq/sequence"
	"github.com/cloudseq/cloudseq/spatialmath"
)

const (
	flagSource    = "source"
	flagDest      = "dest"
	flagBox       = "box"
	flagSphere    = "sphere"
	flagReference = "reference"
	flagFormat    = "format"
	flagFPS       = "fps"
	flagWatch     = "watch"
)

// NewApp returns the cloudseq command line app.
func NewApp(logger golog.Logger) *cli.App {
	return &cli.App{
		Name:  "cloudseq",
		Usage: "inspect, play, and export point cloud frame sequences",
		Commands: []*cli.Command{
			{
				Name:  "info",
				Usage: "list the sorted frame sequence of a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagSource, Usage: "directory of ply frames", Required: true},
				},
				Action: func(c *cli.Context) error {
					return runInfo(c, logger)
				},
			},
			{
				Name:  "play",
				Usage: "step through every frame of a sequence",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagSource, Usage: "directory of ply frames", Required: true},
					&cli.IntFlag{Name: flagFPS, Usage: "frames per second", Value: 10},
					&cli.BoolFlag{Name: flagWatch, Usage: "keep running and refresh the sequence on directory changes"},
				},
				Action: func(c *cli.Context) error {
					return runPlay(c, logger)
				},
			},
			{
				Name:  "export",
				Usage: "export every frame, propagating the reference frame's deletion mask",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagSource, Usage: "directory of ply frames", Required: true},
					&cli.StringFlag{Name: flagDest, Usage: "destination directory", Required: true},
					&cli.StringFlag{Name: flagBox, Usage: "box selector as cx,cy,cz,sx,sy,sz"},
					&cli.StringFlag{Name: flagSphere, Usage: "sphere selector as cx,cy,cz,r"},
					&cli.IntFlag{Name: flagReference, Usage: "reference frame index", Value: 0},
					&cli.StringFlag{Name: flagFormat, Usage: "output ply format (binary or ascii)", Value: "binary"},
				},
				Action: func(c *cli.Context) error {
					return runExport(c, logger)
				},
			},
		},
	}
}

func loadRegistry(c *cli.Context, logger golog.Logger) (*sequence.Registry, error) {
	files, err := ScanDir(c.String(flagSource))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no ply frames found in %q", c.String(flagSource))
	}
	registry := sequence.NewRegistry()
	registry.OnCount(func(n int) {
		logger.Infow("frames registered", "count", n)
	})
	registry.RegisterFrames(files)
	return registry, nil
}

func runInfo(c *cli.Context, logger golog.Logger) error {
	registry, err := loadRegistry(c, logger)
	if err != nil {
		return err
	}

	data := pterm.TableData{{"index", "file"}}
	for i, f := range registry.Frames() {
		data = append(data, []string{strconv.Itoa(i), f.Name()})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runPlay(c *cli.Context, logger golog.Logger) error {
	registry, err := loadRegistry(c, logger)
	if err != nil {
		return err
	}

	sc := scene.New()
	ctrl := sequence.NewController(registry, sc, sequence.NewPLYImporter(logger), logger)

	if c.Bool(flagWatch) {
		watcher, err := NewWatcher(c.String(flagSource), registry, 500*time.Millisecond, logger)
		if err != nil {
			return err
		}
		defer goutils.UncheckedErrorFunc(watcher.Close)
		watcher.Start(c.Context)
	}

	fps := c.Int(flagFPS)
	if fps <= 0 {
		fps = 10
	}
	interval := time.Second / time.Duration(fps)

	for {
		for i := 0; i < registry.Len(); i++ {
			if err := ctrl.RequestFrame(c.Context, i); err != nil {
				return err
			}
			idx, node := ctrl.CurrentFrame()
			if node != nil && node.Cloud() != nil {
				logger.Infow("frame", "index", idx, "points", node.Cloud().Size())
			}
			if !goutils.SelectContextOrWait(c.Context, interval) {
				return c.Context.Err()
			}
		}
		if !c.Bool(flagWatch) {
			return nil
		}
	}
}

func runExport(c *cli.Context, logger golog.Logger) error {
	registry, err := loadRegistry(c, logger)
	if err != nil {
		return err
	}

	format, err := parseFormat(c.String(flagFormat))
	if err != nil {
		return err
	}

	sc := scene.New()
	if err := attachSelectorHelpers(sc, c.String(flagBox), c.String(flagSphere)); err != nil {
		return err
	}

	ctrl := sequence.NewController(registry, sc, sequence.NewPLYImporter(logger), logger,
		sequence.WithConfirmer(NewTermConfirmer()))
	if err := ctrl.RequestFrame(c.Context, c.Int(flagReference)); err != nil {
		return err
	}
	if _, node := ctrl.CurrentFrame(); node == nil {
		return errors.Errorf("reference frame %d could not be loaded", c.Int(flagReference))
	}

	exporter := sequence.NewExporter(ctrl,
		sequence.NewPLYLoader(logger),
		sequence.NewPLYSerializer(format),
		logger,
		sequence.WithNotifier(NewTermNotifier()),
		sequence.WithProgress(NewTermProgress()))
	return exporter.ExportSequence(c.Context, sequence.NewDirStore(c.String(flagDest)))
}

func parseFormat(s string) (pointcloud.PLYFormat, error) {
	switch s {
	case "binary":
		return pointcloud.PLYBinary, nil
	case "ascii":
		return pointcloud.PLYAscii, nil
	default:
		return 0, errors.Errorf("unknown ply format %q", s)
	}
}

// attachSelectorHelpers turns selector flags into scene helpers so the
// exporter's selector resolution finds them the same way it would find
// editor-placed helpers.
func attachSelectorHelpers(sc *scene.Scene, boxFlag, sphereFlag string) error {
	if boxFlag != "" {
		box, err := ParseBoxFlag(boxFlag)
		if err != nil {
			return err
		}
		sc.Attach(scene.BoxHelper{Center: box.Center, Size: box.Size})
	}
	if sphereFlag != "" {
		sphere, err := ParseSphereFlag(sphereFlag)
		if err != nil {
			return err
		}
		sc.Attach(scene.SphereHelper{Center: sphere.Center, Radius: sphere.Radius})
	}
	return nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errors.Errorf("expected %d comma-separated values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Errorf("invalid number %q", part)
		}
		out[i] = v
	}
	return out, nil
}

// ParseBoxFlag parses a box selector given as cx,cy,cz,sx,sy,sz.
func ParseBoxFlag(s string) (spatialmath.Box, error) {
	v, err := parseFloats(s, 6)
	if err != nil {
		return spatialmath.Box{}, errors.Wrap(err, "invalid box selector")
	}
	return spatialmath.NewBox(
		r3.Vector{X: v[0], Y: v[1], Z: v[2]},
		r3.Vector{X: v[3], Y: v[4], Z: v[5]})
}

// ParseSphereFlag parses a sphere selector given as cx,cy,cz,r.
func ParseSphereFlag(s string) (spatialmath.Sphere, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return spatialmath.Sphere{}, errors.Wrap(err, "invalid sphere selector")
	}
	return spatialmath.NewSphere(r3.Vector{X: v[0], Y: v[1], Z: v[2]}, v[3])
}
