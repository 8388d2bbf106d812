package render

import (
	"bytes"
	"strings"
	"testing"

	"socialgraph/internal/physics"
)

func TestWriteChart(t *testing.T) {
	b := NewBuilder(nil, physics.Viewport{Width: 400, Height: 400})
	fr := b.Build([]physics.Frame{
		{ID: "a", Position: physics.Vec(-50, 0), Radius: 20, Kind: physics.Organization, Links: []string{"b"}},
		{ID: "b", Position: physics.Vec(50, 0), Radius: 20, Kind: physics.Project},
	}, map[string]Style{
		"a": {Title: "Acme", Color: "223,87,69"},
		"b": {Title: "Rocket", Color: "99,129,208"},
	}, "")

	var buf bytes.Buffer
	if err := WriteChart(&buf, fr, "Space"); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	for _, want := range []string{"Space", "Acme", "Rocket", "diamond", "rgb(223,87,69)", `"layout":"none"`} {
		if !strings.Contains(html, want) {
			t.Errorf("chart is missing %q", want)
		}
	}
}

func TestChartNames(t *testing.T) {
	names := chartNames([]NodeFrame{
		{ID: "1", Title: "Same"},
		{ID: "2", Title: "Same"},
		{ID: "3", Title: "Unique"},
		{ID: "4"},
	})
	if names["1"] != "Same 1" || names["2"] != "Same 2" || names["3"] != "Unique" || names["4"] != "4" {
		t.Errorf("unexpected names %v", names)
	}
}
