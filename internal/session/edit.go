package session

import (
	"fmt"

	"go.uber.org/zap"

	"socialgraph/internal/graph"
	"socialgraph/internal/physics"
)

// AddVertex creates a vertex at pos and adds it to the running simulation.
func (c *Context) AddVertex(pos physics.Vector2) (*graph.Vertex, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.doc.AddVertex(pos)
	if err != nil {
		return nil, err
	}
	if err := c.sim.Add(graph.VertexNode(v)); err != nil {
		// ids are fresh uuids; undo the document change to stay consistent.
		_ = c.doc.RemoveVertex(v.ID)
		return nil, err
	}
	c.fresh = false
	c.logger.Debug("vertex added", zap.String("id", v.ID), zap.String("title", v.Title))
	return v.Clone(), nil
}

// UpdateVertex patches a vertex. Type, member and link changes take effect
// on the next step.
func (c *Context) UpdateVertex(id string, p graph.VertexPatch) (*graph.Vertex, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.doc.UpdateVertex(id, p)
	if err != nil {
		return nil, err
	}
	c.syncNode(v)
	c.fresh = false
	return v.Clone(), nil
}

// RemoveVertex deletes a vertex together with every link pointing at it.
// On error neither the graph nor the simulation is changed.
func (c *Context) RemoveVertex(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.doc.Vertex(id); !ok {
		return fmt.Errorf("%w: %s", graph.ErrVertexNotFound, id)
	}
	if err := c.sim.Remove(id); err != nil {
		return err
	}
	if err := c.doc.RemoveVertex(id); err != nil {
		return err
	}
	c.fresh = false
	for _, v := range c.doc.Vertices {
		c.syncNode(v)
	}
	if c.selected == id {
		c.selected = ""
	}
	return nil
}

// AddLink links one vertex to another.
func (c *Context) AddLink(from, to string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.doc.AddLink(from, to); err != nil {
		return err
	}
	v, _ := c.doc.Vertex(from)
	c.syncNode(v)
	c.fresh = false
	return nil
}

// syncNode copies the physics-relevant vertex attributes to its node.
func (c *Context) syncNode(v *graph.Vertex) {
	n, ok := c.sim.Node(v.ID)
	if !ok {
		return
	}
	fresh := graph.VertexNode(v)
	n.Kind = fresh.Kind
	n.Members = fresh.Members
	n.Links = fresh.Links
}

// Select picks the vertex under point, or clears the selection when there
// is none. It returns the selected id.
func (c *Context) Select(point physics.Vector2) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.sim.FindAt(point)
	if id != c.selected {
		c.selected = id
		c.fresh = false
	}
	return id, ok
}

// Selected returns the selected vertex id, or "".
func (c *Context) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// At returns the vertex whose disc contains point, without selecting it.
func (c *Context) At(point physics.Vector2) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.FindAt(point)
}

// Nearest returns the vertex closest to point.
func (c *Context) Nearest(point physics.Vector2) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.FindNearest(point)
}
