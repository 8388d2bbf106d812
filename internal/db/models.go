package db

// Graph represents a row in the graphs table
type Graph struct {
	Alias       string `json:"alias"`
	Title       string `json:"title"`
	Authors     string `json:"authors"` // JSON array
	Created     string `json:"created"`
	Visibility  string `json:"visibility"`
	License     string `json:"license"`
	UpdatedAt   int64  `json:"updated_at"` // Unix millis
	VertexCount int    `json:"vertex_count"`
}

// Vertex represents a row in the vertices table
type Vertex struct {
	GraphAlias  string   `json:"graph_alias"`
	ID          string   `json:"id"`
	Ordinal     int      `json:"ordinal"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Details     *string  `json:"details"` // JSON object
	Image       *string  `json:"image"`   // JSON object
	Color       string   `json:"color"`
	Members     string   `json:"members"` // JSON array
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
}

// Link represents a row in the links table. Ordinal orders links across the
// whole graph.
type Link struct {
	GraphAlias string `json:"graph_alias"`
	SourceID   string `json:"source_id"`
	TargetID   string `json:"target_id"`
	Ordinal    int    `json:"ordinal"`
}
