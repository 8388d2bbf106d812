package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"socialgraph/internal/graph"
	"socialgraph/internal/render"
	"socialgraph/internal/session"
)

var (
	importAlias  string
	exportFormat string
	exportOutput string
	listJSON     bool
	searchJSON   bool
)

var importCmd = &cobra.Command{
	Use:   "import <file.json|->",
	Short: "Validate a graph document and store it under its alias",
	Long: `Reads a graph document, checks every field and stores it. Nothing is
written when the document has any problem; all problems are listed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		doc, err := graph.Decode(r)
		if err != nil {
			return err
		}
		if importAlias != "" {
			doc.Metadata.Alias = graph.SanitizeAlias(importAlias)
		}

		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := graph.SaveDocument(d, doc); err != nil {
			return err
		}
		links := 0
		for _, v := range doc.Vertices {
			links += len(v.Links)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "[import] %s: %d vertices, %d links\n", doc.Metadata.Alias, len(doc.Vertices), links)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <alias>",
	Short: "Write a stored graph as JSON, an Atom feed or an HTML chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		doc, err := graph.LoadDocument(d, args[0])
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		switch exportFormat {
		case "json":
			err = graph.Encode(&buf, doc)
		case "atom":
			err = doc.WriteAtom(&buf, cfg.Server.BaseURL)
		case "html":
			var fr render.Frame
			fr, err = layoutFrame(doc)
			if err == nil {
				err = render.WriteChart(&buf, fr, doc.Metadata.Title)
			}
		default:
			return fmt.Errorf("unknown export format %q (want json, atom or html)", exportFormat)
		}
		if err != nil {
			return err
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		}
		return os.WriteFile(exportOutput, buf.Bytes(), 0o644)
	},
}

// layoutFrame renders doc as it is stored, without running the simulation.
func layoutFrame(doc *graph.Document) (render.Frame, error) {
	sess, err := session.New(doc, session.Options{
		Params:   cfg.Physics,
		Viewport: cfg.Viewport,
		Logger:   logger,
	})
	if err != nil {
		return render.Frame{}, err
	}
	return sess.Frame(), nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored graphs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		graphs, err := d.ListGraphs()
		if err != nil {
			return err
		}
		if listJSON {
			return writeJSON(cmd.OutOrStdout(), graphs)
		}
		if len(graphs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No graphs stored.")
			return nil
		}
		for _, g := range graphs {
			updated := time.UnixMilli(g.UpdatedAt).UTC().Format(time.DateTime)
			fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %4d vertices  %-9s %-12s %s  %s\n",
				g.Alias, g.VertexCount, g.Visibility, g.License, updated, truncTitle(g.Title, 40))
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <alias>",
	Short: "Delete a stored graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.DeleteGraph(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "[delete] %s removed\n", args[0])
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <alias> <query>",
	Short: "Full-text search over vertex titles and descriptions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		found, err := d.SearchVertices(args[0], args[1])
		if err != nil {
			return err
		}
		if searchJSON {
			type hit struct {
				ID    string `json:"id"`
				Title string `json:"title"`
				Type  string `json:"type"`
			}
			hits := make([]hit, len(found))
			for i, v := range found {
				hits[i] = hit{ID: v.ID, Title: v.Title, Type: v.Type}
			}
			return writeJSON(cmd.OutOrStdout(), hits)
		}
		for _, v := range found {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %-12s %s\n", truncID(v.ID), v.Type, v.Title)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importAlias, "alias", "", "Store under this alias instead of the document's")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json, atom or html")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(importCmd, exportCmd, listCmd, deleteCmd, searchCmd)
}
