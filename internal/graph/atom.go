package graph

import (
	"fmt"
	"io"
	"time"

	"github.com/gorilla/feeds"
)

// AtomSubtitle is the fixed subtitle of exported feeds.
const AtomSubtitle = "A social graph"

// Feed builds an Atom feed with one entry per vertex. baseURL is used as the
// link of the feed and of every entry.
func (d *Document) Feed(baseURL string) *feeds.Feed {
	m := d.Metadata
	updated := ParseCreated(m.Created)

	feed := &feeds.Feed{
		Title:       m.Title,
		Description: AtomSubtitle,
		Link:        &feeds.Link{Href: baseURL},
		Updated:     updated,
		Created:     updated,
		Id:          baseURL,
	}
	if len(m.Authors) > 0 {
		feed.Author = &feeds.Author{Name: m.Authors[0]}
	}
	if l, ok := LookupLicense(m.License); ok {
		feed.Copyright = l.Name
	}
	for _, v := range d.Vertices {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          "urn:uuid:" + v.ID,
			Title:       v.Title,
			Link:        &feeds.Link{Href: baseURL},
			Description: v.Description,
			Updated:     updated,
			Created:     updated,
		})
	}
	return feed
}

// WriteAtom writes the Atom export of d.
func (d *Document) WriteAtom(w io.Writer, baseURL string) error {
	if err := d.Feed(baseURL).WriteAtom(w); err != nil {
		return fmt.Errorf("writing atom feed: %w", err)
	}
	return nil
}

// ParseCreated parses metadata.created. It accepts CreatedLayout, RFC1123,
// RFC1123Z and RFC3339; anything else yields the zero time.
func ParseCreated(s string) time.Time {
	for _, layout := range []string{CreatedLayout, time.RFC1123, time.RFC1123Z, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
