package sequence

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"

	"github.com/cloudseq/cloudseq/scene"
)

// Controller owns the live frame. It loads one frame at a time on demand,
// coalesces rapid frame change requests into the most recent one, guards
// unsaved scene modifications behind a confirmation, and destroys the
// previous frame's cloud only after its successor has rendered once.
type Controller struct {
	logger    golog.Logger
	registry  *Registry
	scene     *scene.Scene
	importer  Importer
	confirmer Confirmer

	clock         clock.Clock
	renderTimeout time.Duration

	pending frameSlot

	mu           sync.Mutex
	currentIndex int
	current      *scene.Node
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithConfirmer sets the collaborator asked before discarding unsaved scene
// modifications. The default confirms everything.
func WithConfirmer(c Confirmer) ControllerOption {
	return func(ctrl *Controller) {
		ctrl.confirmer = c
	}
}

// WithRenderTimeout bounds the wait for a new frame's first render. Zero, the
// default, waits forever; that matches the renderer contract, which promises
// a signal eventually but not when.
func WithRenderTimeout(d time.Duration) ControllerOption {
	return func(ctrl *Controller) {
		ctrl.renderTimeout = d
	}
}

// WithClock substitutes the clock used for the render timeout.
func WithClock(c clock.Clock) ControllerOption {
	return func(ctrl *Controller) {
		ctrl.clock = c
	}
}

// NewController returns a controller over the given registry and scene.
func NewController(
	registry *Registry,
	sc *scene.Scene,
	importer Importer,
	logger golog.Logger,
	opts ...ControllerOption,
) *Controller {
	ctrl := &Controller{
		logger:       logger,
		registry:     registry,
		scene:        sc,
		importer:     importer,
		confirmer:    AlwaysConfirm{},
		clock:        clock.New(),
		currentIndex: -1,
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	return ctrl
}

// CurrentFrame returns the index of the live frame (-1 when none) and its
// node (nil when none).
func (c *Controller) CurrentFrame() (int, *scene.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentIndex, c.current
}

// RequestFrame makes frame idx current. Out-of-range indices are no-ops.
// While a load is in flight the request only overwrites the coalescing slot
// and returns; the slot's handshake guarantees the latest request is loaded,
// by this caller or the one holding the in-flight token. Errors from the
// import or the first-render wait propagate to the caller; the token is
// released on every exit path.
func (c *Controller) RequestFrame(ctx context.Context, idx int) error {
	if idx < 0 || idx >= c.registry.Len() {
		return nil
	}

	if !c.pending.Begin(idx) {
		return nil
	}

	for {
		if idx >= 0 && idx < c.registry.Len() {
			if err := c.loadFrame(ctx, idx); err != nil {
				c.pending.Abort()
				return err
			}
		}
		next, ok := c.pending.Finish()
		if !ok {
			return nil
		}
		idx = next
	}
}

func (c *Controller) loadFrame(ctx context.Context, idx int) error {
	c.mu.Lock()
	cur := c.currentIndex
	c.mu.Unlock()
	if idx == cur {
		return nil
	}

	if c.scene.Dirty() {
		ok, err := c.confirmer.Confirm(ctx, "The current frame has unsaved changes. Discard them?")
		if err != nil {
			return err
		}
		if !ok {
			c.logger.Debug("frame change declined, keeping current frame")
			return nil
		}
		c.scene.Clear()
		c.mu.Lock()
		c.current = nil
		c.currentIndex = -1
		c.mu.Unlock()
	}

	file, ok := c.registry.Frame(idx)
	if !ok {
		return nil
	}

	c.logger.Debugw("loading frame", "index", idx, "file", file.Name())
	nodes, err := c.importer.Import(ctx, c.scene, []FrameFile{file})
	if err != nil {
		return NewFailure(KindLoadFailure, err, file.Name())
	}
	if len(nodes) == 0 {
		return NewFailure(KindLoadFailure, nil, "importer returned no clouds for "+file.Name())
	}
	node := nodes[0]

	if err := c.awaitFirstRender(ctx, node); err != nil {
		// no partial adoption; the failed frame leaves the scene
		c.scene.Detach(node)
		node.Release()
		return err
	}

	c.mu.Lock()
	prev := c.current
	c.current = node
	c.currentIndex = idx
	c.mu.Unlock()

	if prev != nil {
		c.scene.Detach(prev)
		prev.Release()
	}
	return nil
}

func (c *Controller) awaitFirstRender(ctx context.Context, node *scene.Node) error {
	if c.renderTimeout <= 0 {
		select {
		case <-node.FirstRender():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := c.clock.Timer(c.renderTimeout)
	defer timer.Stop()
	select {
	case <-node.FirstRender():
		return nil
	case <-timer.C:
		return NewFailure(KindRenderTimeout, nil, "first render did not complete in time")
	case <-ctx.Done():
		return ctx.Err()
	}
}
