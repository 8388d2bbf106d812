package graph

import (
	"bytes"
	"encoding/xml"
	"testing"
)

type atomFeed struct {
	Title    string `xml:"title"`
	Subtitle string `xml:"subtitle"`
	Updated  string `xml:"updated"`
	Author   struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Entries []struct {
		ID      string `xml:"id"`
		Title   string `xml:"title"`
		Summary string `xml:"summary"`
	} `xml:"entry"`
}

func TestWriteAtom(t *testing.T) {
	doc, err := DecodeBytes([]byte(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := doc.WriteAtom(&buf, "http://localhost:8080/"); err != nil {
		t.Fatal(err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(buf.Bytes(), &feed); err != nil {
		t.Fatalf("feed is not valid XML: %v\n%s", err, buf.String())
	}
	if feed.Title != "Open source" || feed.Subtitle != AtomSubtitle {
		t.Errorf("unexpected header %+v", feed)
	}
	if feed.Author.Name != "Ada" {
		t.Errorf("expected first author, got %q", feed.Author.Name)
	}
	if feed.Updated != "2013-02-26T10:00:00Z" {
		t.Errorf("updated should equal created, got %q", feed.Updated)
	}
	if len(feed.Entries) != 2 {
		t.Fatalf("expected one entry per vertex, got %d", len(feed.Entries))
	}
	e := feed.Entries[0]
	if e.Title != "Foundation" || e.Summary != "Keeps the lights on" || e.ID != "urn:uuid:9b2d6c1e-0000-4000-8000-000000000001" {
		t.Errorf("unexpected entry %+v", e)
	}
}
