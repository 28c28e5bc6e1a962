// Package view renders the site's HTML templates for echo.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/julo-ch/www/internal/config"
	"github.com/julo-ch/www/internal/flash"
	"github.com/julo-ch/www/internal/session"
)

//go:embed templates
var templateFS embed.FS

const layout = "templates/layout.html"

// Page is the value every template executes against. Handlers supply
// Data; the renderer fills in the rest from the request.
type Page struct {
	Site     config.SiteConfig
	Flashes  []string
	LoggedIn bool
	Path     string
	Data     any
}

// Renderer implements echo.Renderer. Each page template is parsed together
// with the shared layout once at startup.
type Renderer struct {
	site  config.SiteConfig
	pages map[string]*template.Template
}

func New(site config.SiteConfig) (*Renderer, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04") },
		"iso":  func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	}
	r := &Renderer{site: site, pages: make(map[string]*template.Template)}
	err := fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || p == layout || !strings.HasSuffix(p, ".html") {
			return err
		}
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, layout, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[strings.TrimPrefix(p, "templates/")] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Render executes the named page (e.g. "blog/index.html") inside the layout.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown template %q", name)
	}
	p := Page{Site: r.site, Data: data}
	if c != nil {
		p.Flashes = flash.Messages(c)
		p.LoggedIn = session.From(c).IsAuthenticated()
		p.Path = c.Request().URL.Path
	}
	return t.ExecuteTemplate(w, "layout.html", p)
}
