package db

// scanVertex scans a row into a Vertex. The row must have all 12 columns in standard order.
func scanVertex(scanner interface{ Scan(dest ...any) error }) (Vertex, error) {
	var v Vertex
	err := scanner.Scan(
		&v.GraphAlias, &v.ID, &v.Ordinal, &v.Title, &v.Type,
		&v.Description, &v.Details, &v.Image, &v.Color, &v.Members,
		&v.X, &v.Y,
	)
	return v, err
}

const vertexColumns = `
		SELECT graph_alias, id, ordinal, title, type, description, details,
		       image, color, members, x, y
		FROM vertices`

func (d *DB) queryVertices(query string, args ...any) ([]Vertex, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vertices []Vertex
	for rows.Next() {
		v, err := scanVertex(rows)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
	}
	return vertices, rows.Err()
}

// GraphVertices returns the vertices of a graph in document order
func (d *DB) GraphVertices(alias string) ([]Vertex, error) {
	return d.queryVertices(vertexColumns+` WHERE graph_alias = ? ORDER BY ordinal`, alias)
}

// SearchByIDPrefix finds vertices of a graph whose ID starts with the given prefix.
func (d *DB) SearchByIDPrefix(alias, prefix string, limit int) ([]Vertex, error) {
	return d.queryVertices(vertexColumns+` WHERE graph_alias = ? AND id LIKE ? ORDER BY ordinal LIMIT ?`,
		alias, prefix+"%", limit)
}

// GraphLinks returns the links of a graph in document order
func (d *DB) GraphLinks(alias string) ([]Link, error) {
	rows, err := d.conn.Query(`
		SELECT graph_alias, source_id, target_id, ordinal
		FROM links WHERE graph_alias = ? ORDER BY ordinal
	`, alias)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.GraphAlias, &l.SourceID, &l.TargetID, &l.Ordinal); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
