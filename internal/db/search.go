package db

import (
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "is": true,
	"it": true, "and": true, "or": true, "with": true, "from": true,
	"by": true, "this": true, "that": true, "as": true, "be": true,
}

// BuildFTSQuery preprocesses a free-text query for FTS5.
// Splits on whitespace, removes stopwords and words < 3 chars, trims punctuation,
// joins with " OR ".
func BuildFTSQuery(query string) string {
	words := strings.Fields(query)
	var filtered []string
	for _, w := range words {
		// Trim non-letter/digit chars from both ends
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
		})
		if len(trimmed) < 3 {
			continue
		}
		if stopwords[strings.ToLower(trimmed)] {
			continue
		}
		filtered = append(filtered, quoteFTS(trimmed))
	}
	return strings.Join(filtered, " OR ")
}

// SearchVertices performs FTS5 search over vertex titles and descriptions
// of one graph and returns matching vertices.
// Returns empty slice if the preprocessed query is empty or if FTS table doesn't exist.
func (d *DB) SearchVertices(alias, query string) ([]Vertex, error) {
	ftsQuery := BuildFTSQuery(query)
	if ftsQuery == "" {
		return []Vertex{}, nil
	}

	vertices, err := d.queryVertices(`
		SELECT v.graph_alias, v.id, v.ordinal, v.title, v.type, v.description, v.details,
		       v.image, v.color, v.members, v.x, v.y
		FROM vertices v
		JOIN vertices_fts fts ON fts.graph_alias = v.graph_alias AND fts.vertex_id = v.id
		WHERE vertices_fts MATCH ?1 AND v.graph_alias = ?2
		ORDER BY rank
	`, ftsQuery, alias)
	if err != nil {
		// Gracefully handle missing FTS table
		if strings.Contains(err.Error(), "no such table") {
			return []Vertex{}, nil
		}
		return nil, err
	}
	if vertices == nil {
		vertices = []Vertex{}
	}
	return vertices, nil
}

// quoteFTS wraps a term in double quotes so that FTS5 treats punctuation
// inside it (dots, dashes) as part of the phrase rather than as syntax.
func quoteFTS(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}
