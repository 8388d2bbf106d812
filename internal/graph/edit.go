package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"socialgraph/internal/physics"
)

// MaxAutoTitles bounds the "#n" titles handed out to new vertices.
const MaxAutoTitles = 100

var (
	ErrVertexNotFound = errors.New("vertex not found")
	ErrNoFreeTitle    = errors.New("no free vertex title")
)

// NewVertexID returns a fresh stable vertex id.
func NewVertexID() string {
	return uuid.NewString()
}

// DefaultDocument is the graph served for an alias that has never been
// saved: empty, public and CC-BY-SA.
func DefaultDocument(alias string, now time.Time) *Document {
	m := NewMetadata(now)
	m.Title = FallbackTitle
	m.Alias = SanitizeAlias(alias)
	m.Visibility = "public"
	m.License = "CC-BY-SA"
	return &Document{Metadata: m, Vertices: []*Vertex{}}
}

// NextVertexTitle returns the first "#n" title (n in 1..MaxAutoTitles) not
// used by any vertex.
func (d *Document) NextVertexTitle() (string, error) {
	used := make(map[string]bool, len(d.Vertices))
	for _, v := range d.Vertices {
		used[v.Title] = true
	}
	for i := 1; i <= MaxAutoTitles; i++ {
		t := "#" + strconv.Itoa(i)
		if !used[t] {
			return t, nil
		}
	}
	return "", ErrNoFreeTitle
}

// AddVertex appends a new Organization vertex at pos with the next free
// automatic title.
func (d *Document) AddVertex(pos physics.Vector2) (*Vertex, error) {
	title, err := d.NextVertexTitle()
	if err != nil {
		return nil, err
	}
	v := &Vertex{
		ID:       NewVertexID(),
		Title:    title,
		Type:     physics.Organization.String(),
		Color:    PaletteColor(len(d.Vertices)),
		Members:  []json.RawMessage{},
		Links:    []string{},
		Position: &pos,
	}
	d.Vertices = append(d.Vertices, v)
	return v, nil
}

// VertexPatch holds the editable vertex attributes. Nil fields are left
// unchanged.
type VertexPatch struct {
	Title       *string            `json:"title,omitempty"`
	Type        *string            `json:"type,omitempty"`
	Description *string            `json:"description,omitempty"`
	Color       *string            `json:"color,omitempty"`
	Details     map[string]string  `json:"details,omitempty"`
	Links       *[]string          `json:"links,omitempty"`
	Members     *[]json.RawMessage `json:"members,omitempty"`
}

// UpdateVertex applies p to the vertex with the given id. The patch is
// checked first and nothing changes when it is invalid. Links reference ids,
// so renaming never breaks them.
func (d *Document) UpdateVertex(id string, p VertexPatch) (*Vertex, error) {
	v, ok := d.Vertex(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVertexNotFound, id)
	}
	next := v.Clone()
	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.Type != nil {
		next.Type = *p.Type
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Color != nil {
		next.Color = *p.Color
	}
	if p.Details != nil {
		next.Details = p.Details
	}
	if p.Links != nil {
		next.Links = append([]string{}, (*p.Links)...)
	}
	if p.Members != nil {
		next.Members = append([]json.RawMessage{}, (*p.Members)...)
	}
	if err := documentValidator().Struct(next); err != nil {
		return nil, &ValidationError{Problems: fieldProblems(err)}
	}
	*v = *next
	return v, nil
}

// RemoveVertex deletes the vertex and every link pointing at it.
func (d *Document) RemoveVertex(id string) error {
	idx := slices.IndexFunc(d.Vertices, func(v *Vertex) bool { return v.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrVertexNotFound, id)
	}
	d.Vertices = slices.Delete(d.Vertices, idx, idx+1)
	for _, v := range d.Vertices {
		v.Links = slices.DeleteFunc(v.Links, func(target string) bool { return target == id })
	}
	return nil
}

// AddLink adds a directed link from one vertex to another. Adding an
// existing link is a no-op.
func (d *Document) AddLink(from, to string) error {
	src, ok := d.Vertex(from)
	if !ok {
		return fmt.Errorf("%w: %s", ErrVertexNotFound, from)
	}
	if _, ok := d.Vertex(to); !ok {
		return fmt.Errorf("%w: %s", ErrVertexNotFound, to)
	}
	if !slices.Contains(src.Links, to) {
		src.Links = append(src.Links, to)
	}
	return nil
}
