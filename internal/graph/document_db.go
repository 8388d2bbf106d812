package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialgraph/internal/db"
	"socialgraph/internal/physics"
)

// LoadDocument reads the graph stored under alias.
func LoadDocument(d *db.DB, alias string) (*Document, error) {
	g, err := d.GetGraph(alias)
	if err != nil {
		return nil, err
	}
	rows, err := d.GraphVertices(alias)
	if err != nil {
		return nil, fmt.Errorf("loading vertices: %w", err)
	}
	links, err := d.GraphLinks(alias)
	if err != nil {
		return nil, fmt.Errorf("loading links: %w", err)
	}

	doc := &Document{
		Metadata: &Metadata{
			Title:      g.Title,
			Created:    g.Created,
			Visibility: g.Visibility,
			License:    g.License,
			Alias:      g.Alias,
		},
		Vertices: make([]*Vertex, 0, len(rows)),
	}
	if err := json.Unmarshal([]byte(g.Authors), &doc.Metadata.Authors); err != nil {
		return nil, fmt.Errorf("decoding authors of %s: %w", alias, err)
	}

	byID := make(map[string]*Vertex, len(rows))
	for _, r := range rows {
		v, err := vertexFromRow(r)
		if err != nil {
			return nil, err
		}
		byID[v.ID] = v
		doc.Vertices = append(doc.Vertices, v)
	}
	for _, l := range links {
		if v, ok := byID[l.SourceID]; ok {
			v.Links = append(v.Links, l.TargetID)
		}
	}
	return doc, nil
}

func vertexFromRow(r db.Vertex) (*Vertex, error) {
	v := &Vertex{
		ID:          r.ID,
		Title:       r.Title,
		Type:        r.Type,
		Description: r.Description,
		Color:       r.Color,
		Links:       []string{},
	}
	if r.Details != nil {
		if err := json.Unmarshal([]byte(*r.Details), &v.Details); err != nil {
			return nil, fmt.Errorf("decoding details of %s: %w", r.ID, err)
		}
	}
	if r.Image != nil {
		v.Image = &Image{}
		if err := json.Unmarshal([]byte(*r.Image), v.Image); err != nil {
			return nil, fmt.Errorf("decoding image of %s: %w", r.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(r.Members), &v.Members); err != nil {
		return nil, fmt.Errorf("decoding members of %s: %w", r.ID, err)
	}
	if v.Members == nil {
		v.Members = []json.RawMessage{}
	}
	if r.X != nil && r.Y != nil {
		p := physics.Vec(*r.X, *r.Y)
		v.Position = &p
	}
	return v, nil
}

// SaveDocument stores doc under its metadata alias, replacing any previous
// version.
func SaveDocument(d *db.DB, doc *Document) error {
	m := doc.Metadata
	authors, err := json.Marshal(m.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}
	g := db.Graph{
		Alias:      m.Alias,
		Title:      m.Title,
		Authors:    string(authors),
		Created:    m.Created,
		Visibility: m.Visibility,
		License:    m.License,
	}

	rows := make([]db.Vertex, 0, len(doc.Vertices))
	var links []db.Link
	for _, v := range doc.Vertices {
		r, err := vertexToRow(v)
		if err != nil {
			return err
		}
		rows = append(rows, r)
		for _, target := range v.Links {
			links = append(links, db.Link{SourceID: v.ID, TargetID: target})
		}
	}
	if err := d.SaveGraph(g, rows, links); err != nil {
		return fmt.Errorf("saving %s: %w", m.Alias, err)
	}
	return nil
}

func vertexToRow(v *Vertex) (db.Vertex, error) {
	r := db.Vertex{
		ID:          v.ID,
		Title:       v.Title,
		Type:        v.Type,
		Description: v.Description,
		Color:       v.Color,
	}
	if v.Details != nil {
		b, err := json.Marshal(v.Details)
		if err != nil {
			return r, fmt.Errorf("encoding details of %s: %w", v.ID, err)
		}
		s := string(b)
		r.Details = &s
	}
	if v.Image != nil {
		b, err := json.Marshal(v.Image)
		if err != nil {
			return r, fmt.Errorf("encoding image of %s: %w", v.ID, err)
		}
		s := string(b)
		r.Image = &s
	}
	members := v.Members
	if members == nil {
		members = []json.RawMessage{}
	}
	b, err := json.Marshal(members)
	if err != nil {
		return r, fmt.Errorf("encoding members of %s: %w", v.ID, err)
	}
	r.Members = string(b)
	if v.Position != nil {
		x, y := v.Position.X, v.Position.Y
		r.X, r.Y = &x, &y
	}
	return r, nil
}

// LoadOrDefault returns the stored graph or, when alias was never saved,
// DefaultDocument(alias).
func LoadOrDefault(d *db.DB, alias string, now time.Time) (*Document, error) {
	alias = SanitizeAlias(alias)
	doc, err := LoadDocument(d, alias)
	if errors.Is(err, db.ErrGraphNotFound) {
		return DefaultDocument(alias, now), nil
	}
	return doc, err
}
