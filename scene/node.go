package scene

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/cloudseq/cloudseq/pointcloud"
	"github.com/cloudseq/cloudseq/spatialmath"
)

// Node is a point cloud placed in a scene. It owns the cloud until Release
// is called; the rendering side reports the cloud's first completed render
// pass through NotifyRendered.
type Node struct {
	mu    sync.Mutex
	cloud pointcloud.PointCloud
	pose  spatialmath.Pose

	boundsStale atomic.Bool
	released    atomic.Bool

	renderOnce sync.Once
	rendered   chan struct{}
}

// NewNode wraps a cloud in an unattached node at the zero pose.
func NewNode(cloud pointcloud.PointCloud) *Node {
	return &Node{
		cloud:    cloud,
		pose:     spatialmath.NewZeroPose(),
		rendered: make(chan struct{}),
	}
}

// Kind implements Element.
func (n *Node) Kind() Kind { return KindCloud }

// Cloud returns the node's point cloud, or nil once released.
func (n *Node) Cloud() pointcloud.PointCloud {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cloud
}

// Pose returns the node's placement.
func (n *Node) Pose() spatialmath.Pose {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pose
}

// SetPose repositions the node.
func (n *Node) SetPose(p spatialmath.Pose) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pose = p
}

// InvalidateBounds marks the node's world bounds stale so downstream
// consumers recompute them.
func (n *Node) InvalidateBounds() {
	n.boundsStale.Store(true)
}

// BoundsStale reports whether the node's world bounds need recomputing.
func (n *Node) BoundsStale() bool {
	return n.boundsStale.Load()
}

// FirstRender returns a channel closed after the node's first completed
// render pass.
func (n *Node) FirstRender() <-chan struct{} {
	return n.rendered
}

// NotifyRendered records that the node's first render pass completed. Safe to
// call more than once.
func (n *Node) NotifyRendered() {
	n.renderOnce.Do(func() {
		close(n.rendered)
	})
}

// Release frees the node's cloud. Releasing twice is an error by contract;
// the second call reports it via the return value so callers can assert the
// destroy-exactly-once invariant.
func (n *Node) Release() bool {
	if !n.released.CompareAndSwap(false, true) {
		return false
	}
	n.mu.Lock()
	n.cloud = nil
	n.mu.Unlock()
	return true
}

// Released reports whether the node's cloud has been freed.
func (n *Node) Released() bool {
	return n.released.Load()
}
