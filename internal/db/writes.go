package db

import (
	"fmt"
	"time"
)

// SaveGraph replaces the graph stored under g.Alias with the given vertices
// and links. Everything happens in one transaction: readers see either the
// old graph or the new one.
func (d *DB) SaveGraph(g Graph, vertices []Vertex, links []Link) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if g.UpdatedAt == 0 {
		g.UpdatedAt = time.Now().UnixMilli()
	}
	_, err = tx.Exec(`
		INSERT INTO graphs (alias, title, authors, created, visibility, license, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(alias) DO UPDATE SET
			title = excluded.title, authors = excluded.authors, created = excluded.created,
			visibility = excluded.visibility, license = excluded.license,
			updated_at = excluded.updated_at
	`, g.Alias, g.Title, g.Authors, g.Created, g.Visibility, g.License, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving graph %s: %w", g.Alias, err)
	}

	for _, table := range []string{"vertices", "links", "vertices_fts"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE graph_alias = ?`, g.Alias); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	vstmt, err := tx.Prepare(`
		INSERT INTO vertices (graph_alias, id, ordinal, title, type, description,
		                      details, image, color, members, x, y)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing vertex insert: %w", err)
	}
	defer vstmt.Close()
	fstmt, err := tx.Prepare(`INSERT INTO vertices_fts (graph_alias, vertex_id, title, description) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing search index insert: %w", err)
	}
	defer fstmt.Close()

	for i, v := range vertices {
		_, err := vstmt.Exec(g.Alias, v.ID, i, v.Title, v.Type, v.Description,
			v.Details, v.Image, v.Color, v.Members, v.X, v.Y)
		if err != nil {
			return fmt.Errorf("saving vertex %s: %w", v.ID, err)
		}
		if _, err := fstmt.Exec(g.Alias, v.ID, v.Title, v.Description); err != nil {
			return fmt.Errorf("indexing vertex %s: %w", v.ID, err)
		}
	}

	lstmt, err := tx.Prepare(`INSERT INTO links (graph_alias, source_id, target_id, ordinal) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing link insert: %w", err)
	}
	defer lstmt.Close()
	for i, l := range links {
		if _, err := lstmt.Exec(g.Alias, l.SourceID, l.TargetID, i); err != nil {
			return fmt.Errorf("saving link %s -> %s: %w", l.SourceID, l.TargetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing graph %s: %w", g.Alias, err)
	}
	return nil
}

// DeleteGraph removes a graph and its search index entries in one
// transaction. Vertices and links are cascade-deleted by SQLite.
func (d *DB) DeleteGraph(alias string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM graphs WHERE alias = ?`, alias)
	if err != nil {
		return fmt.Errorf("deleting graph %s: %w", alias, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrGraphNotFound, alias)
	}
	if _, err := tx.Exec(`DELETE FROM vertices_fts WHERE graph_alias = ?`, alias); err != nil {
		return fmt.Errorf("clearing search index: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of %s: %w", alias, err)
	}
	return nil
}
