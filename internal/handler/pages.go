package handler

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/julo-ch/www/internal/markup"
	"github.com/julo-ch/www/internal/repository"
)

// PageHandler serves flat pages by path.
type PageHandler struct {
	Pages  *repository.PageRepo
	Markup *markup.Renderer
}

type pageView struct {
	Title string
	HTML  template.HTML
}

// Show renders the page stored under /:path or 404.
func (h *PageHandler) Show(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Pages.GetByPath(ctx, c.Param("path"))
	if err != nil {
		if errors.Is(err, repository.ErrPageNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	return c.Render(http.StatusOK, "pages/show.html", pageView{Title: p.Title, HTML: h.Markup.MustHTML(p.Body)})
}

// Projects is a placeholder section.
func Projects(c echo.Context) error {
	return c.Render(http.StatusOK, "comingsoon.html", struct{ What string }{"Projects"})
}
