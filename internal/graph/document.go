package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"socialgraph/internal/physics"
)

const (
	DefaultTitle      = "An untitled social graph"
	DefaultAuthor     = "Anonymous"
	DefaultVisibility = "private"
	DefaultLicense    = "COPYRIGHT"
	DefaultAlias      = "untitled"

	// FallbackTitle names the graph served for an alias never saved.
	FallbackTitle = "untitled"
)

// Visibilities lists the accepted metadata.visibility values.
var Visibilities = []string{"private", "protected", "public"}

// Metadata describes a whole graph.
type Metadata struct {
	Title      string   `json:"title" validate:"max=256"`
	Authors    []string `json:"authors" validate:"dive,max=128"`
	Created    string   `json:"created"`
	Visibility string   `json:"visibility" validate:"oneof=private protected public"`
	License    string   `json:"license" validate:"license"`
	Alias      string   `json:"alias" validate:"alias"`
}

// Image is an optional picture attached to a vertex.
type Image struct {
	Src    string `json:"src" validate:"required"`
	Width  int    `json:"width" validate:"gte=0"`
	Height int    `json:"height" validate:"gte=0"`
}

// Vertex is a persisted graph node. Members are kept as raw JSON since only
// their count matters to the layout.
type Vertex struct {
	ID          string            `json:"id" validate:"required,max=128"`
	Title       string            `json:"title" validate:"max=256"`
	Type        string            `json:"type" validate:"kind"`
	Description string            `json:"description,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	Image       *Image            `json:"image,omitempty" validate:"omitnil"`
	Color       string            `json:"color" validate:"rgbtriple"`
	Members     []json.RawMessage `json:"members"`
	Links       []string          `json:"links" validate:"dive,required"`
	Position    *physics.Vector2  `json:"position,omitempty"`

	// linkTitles holds links imported as an object keyed by target title,
	// in document order. Normalize resolves them into Links.
	linkTitles []string
}

// UnmarshalJSON accepts links either as an array of target ids or, as older
// exports wrote them, as an object keyed by target title.
func (v *Vertex) UnmarshalJSON(b []byte) error {
	type plain Vertex
	aux := struct {
		*plain
		Links json.RawMessage `json:"links"`
	}{plain: (*plain)(v)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	raw := bytes.TrimSpace(aux.Links)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		v.Links = nil
	case raw[0] == '[':
		return json.Unmarshal(raw, &v.Links)
	case raw[0] == '{':
		titles, err := objectKeys(raw)
		if err != nil {
			return err
		}
		v.Links = nil
		v.linkTitles = titles
	default:
		return errors.New("links: must be an array of ids or an object keyed by title")
	}
	return nil
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// Kind returns the physics kind of the vertex. Unknown types fall back to
// Organization; Decode rejects them anyway.
func (v *Vertex) Kind() physics.Kind {
	k, err := physics.ParseKind(v.Type)
	if err != nil {
		return physics.Organization
	}
	return k
}

// Document is a graph as persisted and exchanged.
type Document struct {
	Metadata *Metadata `json:"metadata" validate:"required"`
	Vertices []*Vertex `json:"vertices" validate:"dive"`
}

// NewMetadata returns metadata filled with defaults, created now.
func NewMetadata(now time.Time) *Metadata {
	return &Metadata{
		Title:      DefaultTitle,
		Authors:    []string{DefaultAuthor},
		Created:    FormatCreated(now),
		Visibility: DefaultVisibility,
		License:    DefaultLicense,
		Alias:      DefaultAlias,
	}
}

// CreatedLayout is the RFC1123 form of metadata.created, always in GMT.
const CreatedLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// FormatCreated renders t the way metadata.created is stored.
func FormatCreated(t time.Time) string {
	return t.UTC().Format(CreatedLayout)
}

// Vertex returns the vertex with the given id.
func (d *Document) Vertex(id string) (*Vertex, bool) {
	for _, v := range d.Vertices {
		if v.ID == id {
			return v, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := &Document{Vertices: make([]*Vertex, len(d.Vertices))}
	if d.Metadata != nil {
		m := *d.Metadata
		m.Authors = append([]string(nil), d.Metadata.Authors...)
		c.Metadata = &m
	}
	for i, v := range d.Vertices {
		c.Vertices[i] = v.Clone()
	}
	return c
}

// Clone returns a deep copy of v.
func (v *Vertex) Clone() *Vertex {
	c := *v
	if v.Details != nil {
		c.Details = make(map[string]string, len(v.Details))
		for k, val := range v.Details {
			c.Details[k] = val
		}
	}
	if v.Image != nil {
		img := *v.Image
		c.Image = &img
	}
	if v.Position != nil {
		p := *v.Position
		c.Position = &p
	}
	c.Members = make([]json.RawMessage, len(v.Members))
	for i, m := range v.Members {
		c.Members[i] = append(json.RawMessage(nil), m...)
	}
	c.Links = append([]string(nil), v.Links...)
	c.linkTitles = append([]string(nil), v.linkTitles...)
	return &c
}

// Decode parses and validates a document. It either returns a complete,
// normalised document or an error; a *ValidationError lists every problem
// found.
func Decode(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return DecodeBytes(raw)
}

// DecodeBytes is Decode for an in-memory document.
func DecodeBytes(raw []byte) (*Document, error) {
	if err := checkShape(raw); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("document: %v", err)}}
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// checkShape verifies the top-level layout before field decoding, so that a
// document without metadata or vertices is reported as such instead of as an
// empty graph.
func checkShape(raw []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return &ValidationError{Problems: []string{"document: not a JSON object"}}
	}
	var problems []string
	for _, f := range []struct {
		key   string
		open  byte
		shape string
	}{
		{"metadata", '{', "object"},
		{"vertices", '[', "array"},
	} {
		v, ok := top[f.key]
		if !ok {
			problems = append(problems, f.key+": missing")
			continue
		}
		v = bytes.TrimSpace(v)
		if len(v) == 0 || v[0] != f.open {
			problems = append(problems, fmt.Sprintf("%s: must be an %s", f.key, f.shape))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Normalize fills the fields an import may leave out: metadata defaults,
// vertex ids, colours, types and empty member/link lists. Members are
// stored compact and title-keyed links are resolved to ids; other existing
// values are never changed.
func (d *Document) Normalize() {
	if d.Metadata == nil {
		d.Metadata = NewMetadata(time.Now())
	}
	m := d.Metadata
	if m.Title == "" {
		m.Title = DefaultTitle
	}
	if len(m.Authors) == 0 {
		m.Authors = []string{DefaultAuthor}
	}
	if m.Created == "" {
		m.Created = FormatCreated(time.Now())
	}
	if m.Visibility == "" {
		m.Visibility = DefaultVisibility
	}
	if m.License == "" {
		m.License = DefaultLicense
	}
	if m.Alias == "" {
		m.Alias = DefaultAlias
	}
	for i, v := range d.Vertices {
		if v == nil {
			continue
		}
		if v.ID == "" {
			v.ID = NewVertexID()
		}
		if v.Type == "" {
			v.Type = physics.Organization.String()
		}
		if v.Color == "" {
			v.Color = PaletteColor(i)
		}
		if v.Members == nil {
			v.Members = []json.RawMessage{}
		}
		for j, m := range v.Members {
			var buf bytes.Buffer
			if json.Compact(&buf, m) == nil {
				v.Members[j] = buf.Bytes()
			}
		}
		if v.Links == nil {
			v.Links = []string{}
		}
	}
	d.resolveLinkTitles()
}

// resolveLinkTitles turns title-keyed links into id links. The first vertex
// carrying a title owns it; unknown titles are kept verbatim and end up as
// dangling links.
func (d *Document) resolveLinkTitles() {
	byTitle := make(map[string]string, len(d.Vertices))
	for _, v := range d.Vertices {
		if v == nil {
			continue
		}
		if _, ok := byTitle[v.Title]; !ok {
			byTitle[v.Title] = v.ID
		}
	}
	for _, v := range d.Vertices {
		if v == nil || len(v.linkTitles) == 0 {
			continue
		}
		for _, title := range v.linkTitles {
			target, ok := byTitle[title]
			if !ok {
				target = title
			}
			if !slices.Contains(v.Links, target) {
				v.Links = append(v.Links, target)
			}
		}
		v.linkTitles = nil
	}
}

// Encode writes d as indented JSON.
func Encode(w io.Writer, d *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return nil
}

// ValidationError reports every problem found in an imported document.
type ValidationError struct {
	Problems []string `json:"problems"`
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid graph: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid graph (%d problems): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}
