// Package session holds a live simulation: the graph document, the
// simulator laid out from it and the renderers fed after every step.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"socialgraph/internal/graph"
	"socialgraph/internal/physics"
	"socialgraph/internal/render"
)

// DefaultInterval is the frame period used when Options.Interval is zero.
const DefaultInterval = 16 * time.Millisecond

// Stats observes simulation steps. A nil Stats is allowed.
type Stats interface {
	ObserveStep(d time.Duration, nodes int)
}

// Options configures a Context. Zero values fall back to defaults.
type Options struct {
	Params   physics.Params
	Viewport physics.Viewport
	Interval time.Duration
	Logger   *zap.Logger
	Rand     *rand.Rand
	Stats    Stats
}

// Context is a running simulation. Every method is safe for concurrent use;
// a frame (one step plus rendering) and an edit never interleave.
type Context struct {
	mu        sync.Mutex
	sim       *physics.Simulator
	doc       *graph.Document
	builder   *render.Builder
	renderers []render.Renderer
	view      physics.Viewport
	rng       *rand.Rand
	logger    *zap.Logger
	stats     Stats
	interval  time.Duration
	selected  string
	paused    bool
	steps     uint64

	// last is the most recent frame; fresh reports whether it still matches
	// the simulation state.
	last  render.Frame
	fresh bool
}

// New lays out doc in a new simulation. doc is owned by the context from now
// on; vertices without a position are placed at random in the viewport.
func New(doc *graph.Document, opts Options) (*Context, error) {
	if opts.Params == (physics.Params{}) {
		opts.Params = physics.DefaultParams()
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, fmt.Errorf("physics params: %w", err)
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	c := &Context{
		sim:      physics.NewSimulator(opts.Params),
		builder:  render.NewBuilder(opts.Logger, opts.Viewport),
		view:     opts.Viewport,
		rng:      opts.Rand,
		logger:   opts.Logger,
		stats:    opts.Stats,
		interval: opts.Interval,
	}
	if err := c.replace(doc); err != nil {
		return nil, err
	}
	return c, nil
}

// AddRenderer registers r to receive a frame after every step.
func (c *Context) AddRenderer(r render.Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderers = append(c.renderers, r)
}

// Tick advances the simulation by one time step and renders the result.
func (c *Context) Tick() render.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stepLocked(1, c.sim.Params().TimeStepMs)
	c.fresh = false
	fr := c.frameLocked()
	for _, r := range c.renderers {
		r.Render(fr)
	}
	return fr
}

// Advance runs n steps of dt milliseconds without rendering. A dt of zero
// uses the configured time step.
func (c *Context) Advance(n int, dt float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dt <= 0 {
		dt = c.sim.Params().TimeStepMs
	}
	c.stepLocked(n, dt)
	c.fresh = false
}

func (c *Context) stepLocked(n int, dt float64) {
	start := time.Now()
	for i := 0; i < n; i++ {
		c.sim.Step(dt)
	}
	c.steps += uint64(max(n, 0))
	if c.stats != nil && n > 0 {
		c.stats.ObserveStep(time.Since(start)/time.Duration(n), c.sim.Len())
	}
}

// Steps returns the number of steps run so far.
func (c *Context) Steps() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps
}

// Run ticks every interval until ctx is cancelled. Ticks are skipped while
// paused. Cancellation takes effect between frames.
func (c *Context) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	c.logger.Info("simulation started", zap.Duration("interval", c.interval))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("simulation stopped", zap.Uint64("steps", c.Steps()))
			return nil
		case <-ticker.C:
			if c.Paused() {
				continue
			}
			c.Tick()
		}
	}
}

func (c *Context) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

func (c *Context) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

func (c *Context) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Frame returns the current state without stepping. The last frame is
// reused until a step or an edit changes what it shows.
func (c *Context) Frame() render.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameLocked()
}

func (c *Context) frameLocked() render.Frame {
	if c.fresh {
		return c.last
	}
	styles := make(map[string]render.Style, len(c.doc.Vertices))
	for _, v := range c.doc.Vertices {
		styles[v.ID] = render.Style{Title: v.Title, Color: v.Color}
	}
	c.last = c.builder.Build(c.sim.Snapshot(), styles, c.selected)
	c.fresh = true
	return c.last
}

// Len returns the number of vertices in the simulation.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.Len()
}

// Params returns the physics parameters in use.
func (c *Context) Params() physics.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim.Params()
}

// SetParams swaps the physics parameters; the next step uses them.
func (c *Context) SetParams(p physics.Params) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.sim.SetParams(p); err != nil {
		return err
	}
	c.fresh = false
	c.logger.Info("physics params updated",
		zap.Float64("minimal_mass", p.MinimalMass),
		zap.Float64("objects_density", p.ObjectsDensity),
		zap.Float64("margin_factor", p.MarginFactor),
		zap.Float64("time_step_ms", p.TimeStepMs))
	return nil
}

// SetViewport changes the area used for random placement and the render
// centre offset.
func (c *Context) SetViewport(v physics.Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
	c.builder.SetViewport(v)
	c.fresh = false
}

// Replace swaps in a new document. It is all-or-nothing: on error the
// running graph is left untouched.
func (c *Context) Replace(doc *graph.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replace(doc)
}

func (c *Context) replace(doc *graph.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	next := doc.Clone()
	placed := next.PlaceMissing(c.view, c.rng)
	if err := c.sim.Replace(next.Nodes()); err != nil {
		return fmt.Errorf("loading nodes: %w", err)
	}
	c.doc = next
	c.selected = ""
	c.fresh = false
	c.logger.Info("graph loaded",
		zap.String("alias", next.Metadata.Alias),
		zap.Int("vertices", len(next.Vertices)),
		zap.Int("placed", placed))
	return nil
}

// Document returns a copy of the graph with the current simulated positions.
func (c *Context) Document() *graph.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := c.doc.Clone()
	doc.ApplyPositions(c.sim.Nodes())
	return doc
}

// Alias returns the alias of the loaded graph.
func (c *Context) Alias() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Metadata.Alias
}
