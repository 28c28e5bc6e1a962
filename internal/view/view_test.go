package view

import (
	"bytes"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julo-ch/www/internal/config"
)

func TestRender(t *testing.T) {
	r, err := New(config.SiteConfig{Title: "julo.ch", Subtitle: "It's mine."})
	require.NoError(t, err)

	for _, name := range []string{
		"blog/index.html", "blog/show.html", "pages/show.html", "login.html", "contact.html",
		"comingsoon.html", "pagenotfound.html", "unauthorized.html", "error.html",
		"admin/index.html", "admin/list.html", "admin/form.html",
	} {
		assert.Contains(t, r.pages, name)
	}

	var buf bytes.Buffer
	data := map[string]any{"Title": "About", "HTML": template.HTML("<p>me</p>")}
	require.NoError(t, r.Render(&buf, "pages/show.html", data, nil))
	out := buf.String()
	assert.Contains(t, out, "<title>About - julo.ch</title>")
	assert.Contains(t, out, "<p>me</p>")
	assert.Contains(t, out, "It&#39;s mine.")
}

func TestRender_EscapesData(t *testing.T) {
	r, err := New(config.SiteConfig{Title: "julo.ch"})
	require.NoError(t, err)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/contact", nil), httptest.NewRecorder())

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "contact.html", map[string]any{"Name": `<b>x</b>`}, c))
	assert.NotContains(t, buf.String(), "<b>x</b>")
	assert.Contains(t, buf.String(), `href="/login"`)
}

func TestRender_Unknown(t *testing.T) {
	r, err := New(config.SiteConfig{})
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "nope.html", nil, nil))
}
