// Package feed builds the blog's Atom document.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/julo-ch/www/internal/model"
)

// Entry is one post with its resolved author and rendered body.
type Entry struct {
	Post   *model.Post
	Author string
	HTML   string
}

// Meta describes the feed itself.
type Meta struct {
	Title    string
	Subtitle string
	BaseURL  string // scheme and host, no trailing slash
}

// PostURL is the absolute URL of a post.
func PostURL(base string, id uint64) string {
	return fmt.Sprintf("%s/blog/post/%d", strings.TrimRight(base, "/"), id)
}

// Atom renders entries in the given order as an Atom document.
func Atom(meta Meta, entries []Entry) (string, error) {
	base := strings.TrimRight(meta.BaseURL, "/")
	f := &feeds.Feed{
		Title:       meta.Title,
		Description: meta.Subtitle,
		Link:        &feeds.Link{Href: base + "/blog"},
		Id:          base + "/blog/atom",
	}
	if len(entries) > 0 {
		f.Updated = entries[0].Post.Created
	} else {
		f.Updated = time.Unix(0, 0).UTC()
	}
	for _, e := range entries {
		url := PostURL(base, e.Post.ID)
		f.Items = append(f.Items, &feeds.Item{
			Id:      url,
			Title:   e.Post.Title,
			Link:    &feeds.Link{Href: url},
			Author:  &feeds.Author{Name: e.Author},
			Content: e.HTML,
			Created: e.Post.Created,
			Updated: e.Post.Created,
		})
	}
	return f.ToAtom()
}
