package render

import (
	"sync"

	"go.uber.org/zap"

	"socialgraph/internal/physics"
)

// Style carries the display attributes the simulator does not know about.
type Style struct {
	Title string
	Color string
}

// NodeFrame is one vertex as drawn. Position is in world coordinates, Screen
// is offset by the viewport centre. Outline holds the screen polygon of
// squares and diamonds.
type NodeFrame struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Kind     physics.Kind      `json:"type"`
	Color    string            `json:"color"`
	Position physics.Vector2   `json:"position"`
	Screen   physics.Vector2   `json:"screen"`
	Radius   float64           `json:"radius"`
	Shape    Shape             `json:"shape"`
	Outline  []physics.Vector2 `json:"outline,omitempty"`
	TextSize int               `json:"textSize"`
	Selected bool              `json:"selected,omitempty"`
}

// EdgeFrame is one resolved link.
type EdgeFrame struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Color    string `json:"color"`
	Arrow    Arrow  `json:"arrow"`
	Selected bool   `json:"selected,omitempty"`
}

// Frame is everything a renderer needs to draw one simulation step.
type Frame struct {
	Seq      uint64      `json:"seq"`
	Nodes    []NodeFrame `json:"nodes"`
	Edges    []EdgeFrame `json:"edges"`
	Dangling int         `json:"dangling"`
	Selected string      `json:"selected,omitempty"`
}

// Renderer consumes frames. Render is called with the simulation lock held,
// so implementations must not block.
type Renderer interface {
	Render(Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame)

func (f RendererFunc) Render(fr Frame) { f(fr) }

// Builder turns simulator snapshots into frames. Links to unknown vertices
// are skipped and logged once per (source, target) pair.
type Builder struct {
	logger *zap.Logger
	view   physics.Viewport

	mu     sync.Mutex
	warned map[[2]string]bool
	seq    uint64
}

func NewBuilder(logger *zap.Logger, view physics.Viewport) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		logger: logger,
		view:   view,
		warned: make(map[[2]string]bool),
	}
}

// SetViewport changes the screen size used for the centre offset.
func (b *Builder) SetViewport(v physics.Viewport) {
	b.mu.Lock()
	b.view = v
	b.mu.Unlock()
}

// Build resolves nodes and links into a frame. styles may miss entries;
// such vertices are drawn untitled in the first palette colour.
func (b *Builder) Build(nodes []physics.Frame, styles map[string]Style, selected string) Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++

	center := b.view.Center()
	fr := Frame{
		Seq:      b.seq,
		Nodes:    make([]NodeFrame, len(nodes)),
		Edges:    []EdgeFrame{},
		Selected: selected,
	}
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		st := styles[n.ID]
		screen := n.Position.Add(center)
		shape := ShapeFor(n.Kind)
		fr.Nodes[i] = NodeFrame{
			ID:       n.ID,
			Title:    st.Title,
			Kind:     n.Kind,
			Color:    st.Color,
			Position: n.Position,
			Screen:   screen,
			Radius:   n.Radius,
			Shape:    shape,
			Outline:  Outline(shape, screen, n.Radius),
			TextSize: TextSize(n.Radius),
			Selected: n.ID == selected,
		}
		index[n.ID] = i
	}

	for i, n := range nodes {
		for _, target := range n.Links {
			j, ok := index[target]
			if !ok {
				fr.Dangling++
				b.warnDangling(n.ID, target)
				continue
			}
			src, dst := fr.Nodes[i], fr.Nodes[j]
			arrow, ok := NewArrow(src.Screen, dst.Screen, src.Radius, dst.Radius)
			if !ok {
				continue
			}
			fr.Edges = append(fr.Edges, EdgeFrame{
				Source:   n.ID,
				Target:   target,
				Color:    src.Color,
				Arrow:    arrow,
				Selected: n.ID == selected || target == selected,
			})
		}
	}
	return fr
}

func (b *Builder) warnDangling(source, target string) {
	key := [2]string{source, target}
	if b.warned[key] {
		return
	}
	b.warned[key] = true
	b.logger.Warn("skipping link to unknown vertex",
		zap.String("source", source),
		zap.String("target", target))
}
