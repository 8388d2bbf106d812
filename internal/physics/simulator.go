package physics

import (
	"errors"
	"fmt"
)

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrDuplicateID  = errors.New("duplicate node id")
	ErrEmptyID      = errors.New("empty node id")
)

// Frame is the per-step output handed to renderers.
type Frame struct {
	ID       string   `json:"id"`
	Position Vector2  `json:"position"`
	Radius   float64  `json:"radius"`
	Kind     Kind     `json:"type"`
	Links    []string `json:"links,omitempty"`
}

// Simulator owns the node collection and advances it in discrete steps.
// It is not safe for concurrent use; callers serialise access.
type Simulator struct {
	model      ForceModel
	nodes      []*Node
	index      map[string]int
	velocities []Vector2
}

// NewSimulator returns an empty simulator using p.
func NewSimulator(p Params) *Simulator {
	return &Simulator{
		model: NewForceModel(p),
		index: make(map[string]int),
	}
}

func (s *Simulator) Params() Params { return s.model.Params }

// SetParams replaces the tuning constants. Radii follow immediately.
func (s *Simulator) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.model.Params = p
	return nil
}

func (s *Simulator) Len() int { return len(s.nodes) }

// Nodes returns the nodes in insertion order. The slice is a copy but the
// nodes are shared.
func (s *Simulator) Nodes() []*Node {
	return append([]*Node(nil), s.nodes...)
}

// Node returns the node with the given id.
func (s *Simulator) Node(id string) (*Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.nodes[i], true
}

// Add appends n. Ids must be unique and non-empty.
func (s *Simulator) Add(n *Node) error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if _, ok := s.index[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	s.index[n.ID] = len(s.nodes)
	s.nodes = append(s.nodes, n)
	return nil
}

// Remove deletes the node with the given id. Other nodes keep their ids and
// relative order.
func (s *Simulator) Remove(id string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
	s.reindex()
	return nil
}

// Replace swaps the whole node set. Nothing changes if the new set is
// invalid.
func (s *Simulator) Replace(nodes []*Node) error {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: %w", i, ErrEmptyID)
		}
		if _, ok := index[n.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
		}
		index[n.ID] = i
	}
	s.nodes = append([]*Node(nil), nodes...)
	s.index = index
	return nil
}

func (s *Simulator) reindex() {
	s.index = make(map[string]int, len(s.nodes))
	for i, n := range s.nodes {
		s.index[n.ID] = i
	}
}

// Step advances every node by one explicit Euler step of timeStepMs.
// All velocities are computed from the positions at the start of the step
// before any position is written, so the result is independent of node order.
func (s *Simulator) Step(timeStepMs float64) {
	if len(s.nodes) == 0 {
		return
	}
	if cap(s.velocities) < len(s.nodes) {
		s.velocities = make([]Vector2, len(s.nodes))
	}
	v := s.velocities[:len(s.nodes)]
	for i, n := range s.nodes {
		v[i] = s.model.ComputeVelocity(n, s.nodes)
	}
	for i, n := range s.nodes {
		n.Position = Add(n.Position, Scale(v[i], timeStepMs))
	}
}

// Snapshot returns the render view of every node, in order.
func (s *Simulator) Snapshot() []Frame {
	frames := make([]Frame, len(s.nodes))
	for i, n := range s.nodes {
		frames[i] = Frame{
			ID:       n.ID,
			Position: n.Position,
			Radius:   n.Radius(s.model.Params),
			Kind:     n.Kind,
			Links:    append([]string(nil), n.Links...),
		}
	}
	return frames
}

// FindNearest returns the id of the node closest to point.
func (s *Simulator) FindNearest(point Vector2) (string, bool) {
	return FindNearest(s.nodes, point)
}

// FindAt returns the id of the first node whose disc contains point.
func (s *Simulator) FindAt(point Vector2) (string, bool) {
	return FindAt(s.nodes, point, s.model.Params)
}
