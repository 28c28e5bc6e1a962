// Package handler exposes the HTTP handlers of the public site.
package handler

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/julo-ch/www/internal/config"
	"github.com/julo-ch/www/internal/feed"
	"github.com/julo-ch/www/internal/markup"
	"github.com/julo-ch/www/internal/model"
	"github.com/julo-ch/www/internal/repository"
)

// feedSize is the number of posts in the Atom feed.
const feedSize = 10

// BlogHandler serves the post index, single posts and the Atom feed.
type BlogHandler struct {
	Posts  *repository.PostRepo
	Users  *repository.UserRepo
	Markup *markup.Renderer
	Site   config.SiteConfig
}

// PostView is a post ready for display.
type PostView struct {
	ID      uint64
	Title   string
	Author  string
	Created time.Time
	HTML    template.HTML
}

// Index lists every post, newest first.
func (h *BlogHandler) Index(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	posts, err := h.Posts.ListRecent(ctx, 0)
	if err != nil {
		return err
	}
	views, err := h.views(ctx, posts)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "blog/index.html", struct{ Posts []PostView }{views})
}

// Show renders one post; unknown ids are 404.
func (h *BlogHandler) Show(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	views, err := h.views(ctx, []*model.Post{p})
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "blog/show.html", views[0])
}

// Atom serves the ten newest posts as an Atom feed.
func (h *BlogHandler) Atom(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	posts, err := h.Posts.ListRecent(ctx, feedSize)
	if err != nil {
		return err
	}
	views, err := h.views(ctx, posts)
	if err != nil {
		return err
	}
	entries := make([]feed.Entry, 0, len(posts))
	for i, p := range posts {
		entries = append(entries, feed.Entry{Post: p, Author: views[i].Author, HTML: string(views[i].HTML)})
	}
	out, err := feed.Atom(feed.Meta{
		Title:    h.Site.Title,
		Subtitle: h.Site.Subtitle,
		BaseURL:  c.Scheme() + "://" + c.Request().Host,
	}, entries)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/atom+xml; charset=utf-8", []byte(out))
}

// views resolves author names in one query and renders bodies.
func (h *BlogHandler) views(ctx context.Context, posts []*model.Post) ([]PostView, error) {
	ids := make([]uint64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
	}
	names, err := h.Users.NamesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, PostView{
			ID:      p.ID,
			Title:   p.Title,
			Author:  names[p.AuthorID],
			Created: p.Created,
			HTML:    h.Markup.MustHTML(p.Body),
		})
	}
	return out, nil
}
