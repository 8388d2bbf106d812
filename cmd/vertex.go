package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"socialgraph/internal/db"
	"socialgraph/internal/graph"
	"socialgraph/internal/physics"
)

var (
	vertexTitle       string
	vertexType        string
	vertexDescription string
	vertexColor       string
	vertexMembers     string
	vertexDetails     map[string]string
	vertexX           float64
	vertexY           float64
	vertexJSON        bool
)

var vertexCmd = &cobra.Command{
	Use:   "vertex",
	Short: "Add, edit, remove and pick vertices of a stored graph",
}

// editStored loads alias, applies fn and saves the result. Unknown aliases
// start from the default empty graph.
func editStored(alias string, fn func(d *db.DB, doc *graph.Document) error) error {
	d, err := OpenDatabase()
	if err != nil {
		return err
	}
	defer d.Close()

	doc, err := graph.LoadOrDefault(d, alias, now())
	if err != nil {
		return err
	}
	if err := fn(d, doc); err != nil {
		return err
	}
	return graph.SaveDocument(d, doc)
}

// patchFromFlags collects the attribute flags that were set.
func patchFromFlags(cmd *cobra.Command) (graph.VertexPatch, error) {
	var p graph.VertexPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		p.Title = &vertexTitle
	}
	if flags.Changed("type") {
		p.Type = &vertexType
	}
	if flags.Changed("description") {
		p.Description = &vertexDescription
	}
	if flags.Changed("color") {
		p.Color = &vertexColor
	}
	if flags.Changed("details") {
		p.Details = vertexDetails
	}
	if flags.Changed("members") {
		var members []json.RawMessage
		if err := json.Unmarshal([]byte(vertexMembers), &members); err != nil {
			return p, fmt.Errorf("--members must be a JSON array: %w", err)
		}
		p.Members = &members
	}
	return p, nil
}

func printVertex(cmd *cobra.Command, v *graph.Vertex) error {
	if vertexJSON {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %d members, %d links)\n",
		v.ID, v.Title, v.Type, len(v.Members), len(v.Links))
	return nil
}

var vertexAddCmd = &cobra.Command{
	Use:   "add <alias>",
	Short: "Add a vertex with the next free #n title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}
		var added *graph.Vertex
		err = editStored(args[0], func(_ *db.DB, doc *graph.Document) error {
			v, err := doc.AddVertex(physics.Vec(vertexX, vertexY))
			if err != nil {
				return err
			}
			added, err = doc.UpdateVertex(v.ID, patch)
			if err != nil {
				_ = doc.RemoveVertex(v.ID)
			}
			return err
		})
		if err != nil {
			return err
		}
		return printVertex(cmd, added)
	},
}

var vertexEditCmd = &cobra.Command{
	Use:   "edit <alias> <vertex>",
	Short: "Change the title, type, description, colour, details or members of a vertex",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}
		var edited *graph.Vertex
		err = editStored(args[0], func(d *db.DB, doc *graph.Document) error {
			v, err := ResolveVertex(d, doc, args[1])
			if err != nil {
				return err
			}
			edited, err = doc.UpdateVertex(v.ID, patch)
			return err
		})
		if err != nil {
			return err
		}
		return printVertex(cmd, edited)
	},
}

var vertexRmCmd = &cobra.Command{
	Use:   "rm <alias> <vertex>",
	Short: "Remove a vertex and every link pointing at it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editStored(args[0], func(d *db.DB, doc *graph.Document) error {
			v, err := ResolveVertex(d, doc, args[1])
			if err != nil {
				return err
			}
			if err := doc.RemoveVertex(v.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "[vertex] removed %s (%s)\n", truncID(v.ID), v.Title)
			return nil
		})
	},
}

var vertexLinkCmd = &cobra.Command{
	Use:   "link <alias> <from> <to>",
	Short: "Link one vertex to another",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editStored(args[0], func(d *db.DB, doc *graph.Document) error {
			from, err := ResolveVertex(d, doc, args[1])
			if err != nil {
				return err
			}
			to, err := ResolveVertex(d, doc, args[2])
			if err != nil {
				return err
			}
			return doc.AddLink(from.ID, to.ID)
		})
	},
}

// parsePoint reads world coordinates from two arguments.
func parsePoint(xs, ys string) (physics.Vector2, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return physics.Vector2{}, fmt.Errorf("invalid x %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return physics.Vector2{}, fmt.Errorf("invalid y %q: %w", ys, err)
	}
	return physics.Vec(x, y), nil
}

// pickCommand builds the read-only point queries.
func pickCommand(use, short string, pick func(nodes []*physics.Node, p physics.Vector2) (string, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <alias> <x> <y>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			d, err := OpenDatabase()
			if err != nil {
				return err
			}
			defer d.Close()

			doc, err := graph.LoadDocument(d, args[0])
			if err != nil {
				return err
			}
			id, ok := pick(doc.Nodes(), p)
			if !ok {
				return fmt.Errorf("%w at (%g, %g)", graph.ErrVertexNotFound, p.X, p.Y)
			}
			v, _ := doc.Vertex(id)
			return printVertex(cmd, v)
		},
	}
}

var vertexAtCmd = pickCommand("at", "Show the vertex whose disc contains a point",
	func(nodes []*physics.Node, p physics.Vector2) (string, bool) {
		return physics.FindAt(nodes, p, cfg.Physics)
	})

var vertexNearestCmd = pickCommand("nearest", "Show the vertex closest to a point", physics.FindNearest)

func init() {
	for _, c := range []*cobra.Command{vertexAddCmd, vertexEditCmd} {
		c.Flags().StringVar(&vertexTitle, "title", "", "Vertex title")
		c.Flags().StringVar(&vertexType, "type", "", "Vertex type: Organization, People or Project")
		c.Flags().StringVar(&vertexDescription, "description", "", "Vertex description")
		c.Flags().StringVar(&vertexColor, "color", "", `Colour as "R,G,B"`)
		c.Flags().StringVar(&vertexMembers, "members", "", "Members as a JSON array")
		c.Flags().StringToStringVar(&vertexDetails, "details", nil, "Details as key=value pairs")
	}
	vertexAddCmd.Flags().Float64Var(&vertexX, "x", 0, "World x coordinate")
	vertexAddCmd.Flags().Float64Var(&vertexY, "y", 0, "World y coordinate")
	vertexCmd.PersistentFlags().BoolVar(&vertexJSON, "json", false, "Output as JSON")

	vertexCmd.AddCommand(vertexAddCmd, vertexEditCmd, vertexRmCmd, vertexLinkCmd, vertexAtCmd, vertexNearestCmd)
	rootCmd.AddCommand(vertexCmd)
}
