package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// scanGraph scans a row into a Graph. The row must have all 8 columns in standard order.
func scanGraph(scanner interface{ Scan(dest ...any) error }) (Graph, error) {
	var g Graph
	err := scanner.Scan(
		&g.Alias, &g.Title, &g.Authors, &g.Created, &g.Visibility,
		&g.License, &g.UpdatedAt, &g.VertexCount,
	)
	return g, err
}

const graphColumns = `
		SELECT g.alias, g.title, g.authors, g.created, g.visibility, g.license, g.updated_at,
		       (SELECT COUNT(*) FROM vertices v WHERE v.graph_alias = g.alias)
		FROM graphs g`

// ListGraphs returns every stored graph, most recently saved first
func (d *DB) ListGraphs() ([]Graph, error) {
	rows, err := d.conn.Query(graphColumns + ` ORDER BY g.updated_at DESC, g.alias`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var graphs []Graph
	for rows.Next() {
		g, err := scanGraph(rows)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, rows.Err()
}

// GetGraph returns the graph stored under alias, or ErrGraphNotFound
func (d *DB) GetGraph(alias string) (*Graph, error) {
	g, err := scanGraph(d.conn.QueryRow(graphColumns+` WHERE g.alias = ?`, alias))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, alias)
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
