package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"socialgraph/internal/graph"
	"socialgraph/internal/physics"
)

var (
	analyzeJSON         bool
	analyzeKind         string
	analyzeTopN         int
	analyzeHubThreshold int
	analyzeSimilar      string
	analyzeMinSimilar   float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <alias>",
	Short: "Analyze a stored graph: topology, layout overlap, bridges, health score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		doc, err := graph.LoadDocument(d, args[0])
		if err != nil {
			return fmt.Errorf("loading graph: %w", err)
		}
		snap := graph.SnapshotFromDocument(doc)

		if analyzeSimilar != "" {
			target, err := ResolveVertex(d, doc, analyzeSimilar)
			if err != nil {
				return err
			}
			similar := graph.FindSimilar(snap, target.ID, analyzeTopN, analyzeMinSimilar)
			if analyzeJSON {
				return writeJSON(cmd.OutOrStdout(), similar)
			}
			printSimilar(target, similar)
			return nil
		}

		if analyzeKind != "" {
			k, err := physics.ParseKind(analyzeKind)
			if err != nil {
				return err
			}
			snap = snap.FilterToKind(k)
		}

		config := &graph.AnalyzerConfig{
			HubThreshold: analyzeHubThreshold,
			TopN:         analyzeTopN,
			Params:       cfg.Physics,
		}

		report := graph.Analyze(snap, config)

		if analyzeJSON {
			return writeJSON(cmd.OutOrStdout(), report)
		}

		printHumanReadable(report, snap)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output as JSON")
	analyzeCmd.Flags().StringVar(&analyzeKind, "kind", "", "Scope analysis to one vertex type (Organization, People, Project)")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top-n", 10, "Number of top items to show per section")
	analyzeCmd.Flags().IntVar(&analyzeHubThreshold, "hub-threshold", 10, "Minimum degree to consider a vertex a hub")
	analyzeCmd.Flags().StringVar(&analyzeSimilar, "similar", "", "List the vertices whose links resemble this vertex's")
	analyzeCmd.Flags().Float64Var(&analyzeMinSimilar, "min-similarity", 0.1, "Lowest similarity listed with --similar")
	rootCmd.AddCommand(analyzeCmd)
}

// writeJSON prints v indented.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSimilar(target *graph.Vertex, similar []graph.SimilarNode) {
	fmt.Printf("\n  Vertices similar to %s (%s)\n", truncTitle(target.Title, 40), truncID(target.ID))
	fmt.Println("  ────────────────────────────────────────")
	if len(similar) == 0 {
		fmt.Println("  none")
	}
	for _, s := range similar {
		linked := ""
		if s.Linked {
			linked = "  [linked]"
		}
		fmt.Printf("    %s %.2f  %s%s\n", truncID(s.ID), s.Similarity, truncTitle(s.Title, 40), linked)
	}
	fmt.Println()
}

func printHumanReadable(report *graph.AnalysisReport, snap *graph.GraphSnapshot) {
	// Health bar
	barLen := int(report.HealthScore * 20)
	if barLen > 20 {
		barLen = 20
	}
	bar := strings.Repeat("█", barLen) + strings.Repeat("░", 20-barLen)
	fmt.Printf("\n  Graph Health: %.0f%%  [%s]\n", report.HealthScore*100, bar)
	fmt.Printf("  breakdown: connectivity=%.2f components=%.2f overlap=%.2f fragility=%.2f\n\n",
		report.HealthBreakdown.Connectivity,
		report.HealthBreakdown.Components,
		report.HealthBreakdown.Overlap,
		report.HealthBreakdown.Fragility)

	// Topology
	t := report.Topology
	fmt.Println("  TOPOLOGY")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Vertices: %d  Links: %d  Components: %d\n", t.TotalNodes, t.TotalEdges, t.NumComponents)
	fmt.Printf("  Largest component: %d  Smallest: %d\n", t.LargestComponent, t.SmallestComponent)
	fmt.Printf("  Members: %d", t.TotalMembers)
	for _, k := range physics.Kinds() {
		fmt.Printf("  %s: %d", k, t.KindCounts[k.String()])
	}
	fmt.Println()
	if t.DanglingLinks > 0 {
		fmt.Printf("  Dangling links: %d (target missing)\n", t.DanglingLinks)
	}

	if t.OrphanCount > 0 {
		fmt.Printf("  Orphans: %d unlinked vertices\n", t.OrphanCount)
		limit := min(len(t.OrphanIDs), 5)
		for _, id := range t.OrphanIDs[:limit] {
			node := snap.Nodes[id]
			title := "?"
			if node != nil {
				title = truncTitle(node.Title, 50)
			}
			fmt.Printf("    - %s (%s)\n", truncID(id), title)
		}
		if t.OrphanCount > 5 {
			fmt.Printf("    ... and %d more\n", t.OrphanCount-5)
		}
	}

	// Degree distribution
	fmt.Println("\n  Degree distribution:")
	for _, b := range t.DegreeHistogram {
		if b.Count > 0 {
			barWidth := int(math.Log2(float64(b.Count))) + 2
			if barWidth < 1 {
				barWidth = 1
			}
			fmt.Printf("    %5s: %4d  %s\n", b.Label, b.Count, strings.Repeat("=", barWidth))
		}
	}

	// Hubs
	if len(t.Hubs) > 0 {
		fmt.Println("\n  Top hubs (degree > threshold):")
		for _, hub := range t.Hubs {
			fmt.Printf("    %s degree=%d (in=%d, out=%d)  %s\n",
				truncID(hub.ID), hub.Degree, hub.InDegree, hub.OutDegree, truncTitle(hub.Title, 40))
		}
	}

	// Layout
	o := report.Overlap
	fmt.Println("\n  LAYOUT")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Mean linked distance / margin: %.2f (1.00 is settled)\n", o.MeanMarginRatio)
	if o.UnplacedCount > 0 {
		fmt.Printf("  %d vertices have no position yet\n", o.UnplacedCount)
	}
	if o.PairCount > 0 {
		fmt.Printf("  %d overlapping pairs (%d vertices):\n", o.PairCount, o.OverlappingIDs)
		limit := min(len(o.Pairs), 10)
		for _, p := range o.Pairs[:limit] {
			fmt.Printf("    %s <-> %s  depth=%.1fpx\n",
				truncTitle(p.ATitle, 25), truncTitle(p.BTitle, 25), p.Depth)
		}
	}

	// Bridges
	br := report.Bridges
	if br.APCount > 0 || br.BridgeCount > 0 || len(br.FragileConnections) > 0 {
		fmt.Println("\n  STRUCTURAL FRAGILITY")
		fmt.Println("  ────────────────────────────────────────")
		if br.APCount > 0 {
			fmt.Printf("  %d articulation points (removal disconnects graph):\n", br.APCount)
			limit := min(len(br.ArticulationPoints), 10)
			for _, ap := range br.ArticulationPoints[:limit] {
				fmt.Printf("    %s (degree ~%d)  %s\n",
					truncID(ap.ID), ap.ComponentsIfRemoved, truncTitle(ap.Title, 40))
			}
		}
		if br.BridgeCount > 0 {
			fmt.Printf("  %d bridge links (removal disconnects graph):\n", br.BridgeCount)
			limit := min(len(br.BridgeEdges), 10)
			for _, be := range br.BridgeEdges[:limit] {
				fmt.Printf("    %s -> %s\n", truncTitle(be.SourceTitle, 30), truncTitle(be.TargetTitle, 30))
			}
		}
		if len(br.FragileConnections) > 0 {
			fmt.Printf("  %d fragile connections between vertex types (<=2 links):\n", len(br.FragileConnections))
			for _, fc := range br.FragileConnections {
				s := ""
				if fc.CrossEdges != 1 {
					s = "s"
				}
				fmt.Printf("    %s <-> %s (%d link%s)\n", fc.KindA, fc.KindB, fc.CrossEdges, s)
			}
		}
	}

	fmt.Println()
}

func truncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Find a safe UTF-8 boundary
	truncated := s[:max]
	for len(truncated) > 0 && truncated[len(truncated)-1]>>6 == 2 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "..."
}
