package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"socialgraph/internal/config"
	"socialgraph/internal/db"
	"socialgraph/internal/graph"
)

// dbFileName is the database file looked up from the working directory upwards.
const dbFileName = ".socialgraph.db"

var (
	dbPath     string
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger

	now = time.Now
)

var rootCmd = &cobra.Command{
	Use:           "socialgraph",
	Short:         "Force-directed social graph layout",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		l, err := config.NewLogger(c.Log)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the "+dbFileName+" database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config (default "+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// DiscoverDB finds the database path using priority: env > flag > walk-up > config.
// The config path is returned even when the file does not exist yet, so that
// the first import creates it.
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("SOCIALGRAPH_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
			return "", fmt.Errorf("database directory not found for --db path: %s", dbPath)
		}
		return dbPath, nil
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, dbFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. Configured default
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return "", fmt.Errorf("no %s found (set SOCIALGRAPH_DB, use --db, or run from a directory containing %s)", dbFileName, dbFileName)
}

// OpenDatabase discovers and opens the database
func OpenDatabase() (*db.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("opening database", zap.String("path", path))
	}
	return db.OpenDB(path)
}

// ResolveVertex finds a vertex of doc by full ID, ID prefix, title or
// full-text search, in that order.
func ResolveVertex(d *db.DB, doc *graph.Document, reference string) (*graph.Vertex, error) {
	alias := doc.Metadata.Alias

	// 1. Exact ID match
	if v, ok := doc.Vertex(reference); ok {
		return v, nil
	}

	// 2. ID prefix match (≥6 hex/dash chars)
	if len(reference) >= 6 && isHexDash(reference) {
		matches, err := d.SearchByIDPrefix(alias, reference, 10)
		if err == nil {
			switch len(matches) {
			case 1:
				return lookup(doc, matches[0].ID, reference)
			case 0:
				// fall through to titles
			default:
				return nil, ambiguous(reference, matches)
			}
		}
	}

	// 3. Exact title, case-insensitive
	var titled []*graph.Vertex
	for _, v := range doc.Vertices {
		if strings.EqualFold(v.Title, reference) {
			titled = append(titled, v)
		}
	}
	if len(titled) == 1 {
		return titled[0], nil
	}

	// 4. FTS search
	found, err := d.SearchVertices(alias, reference)
	if err == nil {
		switch len(found) {
		case 1:
			return lookup(doc, found[0].ID, reference)
		case 0:
			// fall through to not found
		default:
			return nil, ambiguous(reference, found)
		}
	}

	return nil, fmt.Errorf("%w: %s", graph.ErrVertexNotFound, reference)
}

func lookup(doc *graph.Document, id, reference string) (*graph.Vertex, error) {
	if v, ok := doc.Vertex(id); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", graph.ErrVertexNotFound, reference)
}

func ambiguous(reference string, matches []db.Vertex) error {
	limit := min(len(matches), 10)
	lines := make([]string, limit)
	for i := 0; i < limit; i++ {
		lines[i] = fmt.Sprintf("  %s %s", truncID(matches[i].ID), matches[i].Title)
	}
	return fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a full vertex ID instead.",
		reference, len(matches), strings.Join(lines, "\n"))
}

func isHexDash(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || c == '-') {
			return false
		}
	}
	return true
}
