package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// echartsSymbol maps shapes to ECharts symbol names.
var echartsSymbol = map[Shape]string{
	Circle:  "circle",
	Square:  "rect",
	Diamond: "diamond",
}

// WriteChart renders fr as a standalone HTML page. Vertices keep their
// simulated positions (ECharts layout "none").
func WriteChart(w io.Writer, fr Frame, title string) error {
	page := components.NewPage()
	page.AddCharts(chartBase(fr, title))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

func chartBase(fr Frame, title string) *charts.Graph {
	names := chartNames(fr.Nodes)
	nodes := make([]opts.GraphNode, 0, len(fr.Nodes))
	for _, n := range fr.Nodes {
		nodes = append(nodes, opts.GraphNode{
			Name:       names[n.ID],
			X:          float32(n.Position.X),
			Y:          float32(n.Position.Y),
			Symbol:     echartsSymbol[n.Shape],
			SymbolSize: 2 * n.Radius,
			ItemStyle:  &opts.ItemStyle{Color: rgb(n.Color)},
		})
	}
	links := make([]opts.GraphLink, 0, len(fr.Edges))
	for _, e := range fr.Edges {
		links = append(links, opts.GraphLink{
			Source:    names[e.Source],
			Target:    names[e.Target],
			LineStyle: &opts.LineStyle{Color: rgb(e.Color)},
		})
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"graph",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Layout:     "none",
				Roam:       opts.Bool(true),
				EdgeSymbol: []string{"none", "arrow"},
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    "black",
			Position: "inside",
		}),
	)
	return graph
}

// chartNames labels nodes by title. ECharts keys nodes by name, so repeated
// or empty titles get the vertex id appended.
func chartNames(nodes []NodeFrame) map[string]string {
	count := make(map[string]int, len(nodes))
	for _, n := range nodes {
		count[n.Title]++
	}
	names := make(map[string]string, len(nodes))
	for _, n := range nodes {
		name := n.Title
		if name == "" || count[name] > 1 {
			name = strings.TrimSpace(name + " " + n.ID)
		}
		names[n.ID] = name
	}
	return names
}

func rgb(triple string) string {
	if triple == "" {
		return ""
	}
	return "rgb(" + triple + ")"
}
