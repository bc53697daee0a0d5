package tree

import "hwmonitor/internal/hardware"

// Viewer grants exclusive access to a computer for the duration of fn.
type Viewer interface {
	View(fn func(c hardware.Computer))
}

// Source builds point-in-time snapshots: the whole tree is built while the
// viewer's lock is held, so no reading changes mid-build.
type Source struct {
	viewer  Viewer
	builder *Builder
}

func NewSource(viewer Viewer, builder *Builder) *Source {
	return &Source{viewer: viewer, builder: builder}
}

func (s *Source) Snapshot() *Node {
	var root *Node
	s.viewer.View(func(c hardware.Computer) {
		root = s.builder.Build(c)
	})
	return root
}
