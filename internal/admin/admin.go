// Package admin is a small CRUD panel. Each registered Module exposes list,
// create, edit and delete views over a Store, and every view of a module
// runs the module's gate before anything else.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/julo-ch/www/internal/flash"
	"github.com/julo-ch/www/internal/logging"
	"github.com/julo-ch/www/internal/middleware"
)

// Kind selects the form control of a field.
type Kind string

const (
	Text     Kind = "text"
	TextArea Kind = "textarea"
	Number   Kind = "number"
)

// Field is one editable attribute of a record.
type Field struct {
	Name  string
	Label string
	Kind  Kind
}

// Values holds submitted or stored form values keyed by field name.
type Values map[string]string

// Row is one line of a list view.
type Row struct {
	ID    uint64
	Cells []string
}

// ErrNotFound is returned by a Store for an unknown id.
var ErrNotFound = errors.New("admin: record not found")

// FieldError rejects a submitted value. The form is shown again with Msg
// next to the field and nothing is stored.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Msg }

// Store adapts a table to the panel. actor is the id of the logged-in user
// performing the change.
type Store interface {
	Columns() []string
	List(ctx context.Context) ([]Row, error)
	Get(ctx context.Context, id uint64) (Values, error)
	Create(ctx context.Context, actor uint64, v Values) error
	Update(ctx context.Context, actor, id uint64, v Values) error
	Delete(ctx context.Context, id uint64) error
}

// Gate decides whether the current request may use a module.
type Gate func(c echo.Context) bool

// Module is a registered admin section, served under /admin/<Slug>.
type Module struct {
	Slug   string
	Title  string
	Fields []Field
	Store  Store

	code int
	gate Gate
}

// Secure protects every view of the module. Requests for which gate
// returns false are answered with httpCode and never reach the Store.
// It must be called before Mount.
func (m *Module) Secure(httpCode int, gate Gate) *Module {
	m.code = httpCode
	m.gate = gate
	return m
}

func (m *Module) guard() echo.MiddlewareFunc {
	if m.gate == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return middleware.Gate(m.code, m.gate)
}

// Admin holds the registered modules.
type Admin struct {
	modules  []*Module
	bySlug   map[string]*Module
	index    *Module
	actor    func(c echo.Context) uint64
	onChange func(ctx context.Context, slug string)
	log      logging.Logger
}

// New creates an empty panel. actor resolves the acting user for Store
// calls.
func New(log logging.Logger, actor func(c echo.Context) uint64) *Admin {
	return &Admin{
		bySlug: make(map[string]*Module),
		index:  &Module{},
		actor:  actor,
		log:    log,
	}
}

// Secure protects the module overview at /admin.
func (a *Admin) Secure(httpCode int, gate Gate) *Admin {
	a.index.Secure(httpCode, gate)
	return a
}

// OnChange registers a hook run after every successful mutation.
func (a *Admin) OnChange(fn func(ctx context.Context, slug string)) *Admin {
	a.onChange = fn
	return a
}

// Register adds a module. Slugs must be unique.
func (a *Admin) Register(slug, title string, fields []Field, store Store) *Module {
	if _, dup := a.bySlug[slug]; dup {
		panic(fmt.Sprintf("admin: module %q registered twice", slug))
	}
	m := &Module{Slug: slug, Title: title, Fields: fields, Store: store}
	a.modules = append(a.modules, m)
	a.bySlug[slug] = m
	return m
}

// Mount registers the panel's routes on g (normally the /admin group).
func (a *Admin) Mount(g *echo.Group) {
	g.GET("", a.overview, a.index.guard())
	for _, m := range a.modules {
		h := &moduleHandler{admin: a, m: m}
		mg := g.Group("/"+m.Slug, m.guard())
		mg.GET("", h.list)
		mg.GET("/new", h.newForm)
		mg.POST("", h.create)
		mg.GET("/:id/edit", h.edit)
		mg.POST("/:id", h.update)
		mg.POST("/:id/delete", h.delete)
		mg.DELETE("/:id", h.delete)
	}
}

func (a *Admin) overview(c echo.Context) error {
	return c.Render(http.StatusOK, "admin/index.html", struct{ Modules []*Module }{a.modules})
}

func (a *Admin) changed(ctx context.Context, slug string) {
	if a.onChange != nil {
		a.onChange(ctx, slug)
	}
}

type moduleHandler struct {
	admin *Admin
	m     *Module
}

type listData struct {
	Slug    string
	Title   string
	Columns []string
	Rows    []Row
}

type formField struct {
	Field
	Value string
	Error string
}

type formData struct {
	Title  string
	Action string
	Fields []formField
	Error  string
}

func (h *moduleHandler) list(c echo.Context) error {
	rows, err := h.m.Store.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "admin/list.html", listData{
		Slug: h.m.Slug, Title: h.m.Title, Columns: h.m.Store.Columns(), Rows: rows,
	})
}

func (h *moduleHandler) newForm(c echo.Context) error {
	return h.renderForm(c, "/admin/"+h.m.Slug, "New "+h.m.Title, Values{}, nil)
}

func (h *moduleHandler) create(c echo.Context) error {
	ctx := c.Request().Context()
	v := h.bind(c)
	if err := h.m.Store.Create(ctx, h.admin.actor(c), v); err != nil {
		return h.formError(c, "/admin/"+h.m.Slug, "New "+h.m.Title, v, err)
	}
	h.admin.log.Info(ctx, "admin create", "module", h.m.Slug)
	h.admin.changed(ctx, h.m.Slug)
	flash.Add(c, "Record was successfully created.")
	return c.Redirect(http.StatusFound, "/admin/"+h.m.Slug)
}

func (h *moduleHandler) edit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	v, err := h.m.Store.Get(c.Request().Context(), id)
	if err != nil {
		return notFound(err)
	}
	return h.renderForm(c, h.recordURL(id), "Edit "+h.m.Title, v, nil)
}

func (h *moduleHandler) update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	v := h.bind(c)
	if err := h.m.Store.Update(ctx, h.admin.actor(c), id, v); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(err)
		}
		return h.formError(c, h.recordURL(id), "Edit "+h.m.Title, v, err)
	}
	h.admin.log.Info(ctx, "admin update", "module", h.m.Slug, "id", id)
	h.admin.changed(ctx, h.m.Slug)
	flash.Add(c, "Record was successfully saved.")
	return c.Redirect(http.StatusFound, "/admin/"+h.m.Slug)
}

func (h *moduleHandler) delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.m.Store.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	h.admin.log.Info(ctx, "admin delete", "module", h.m.Slug, "id", id)
	h.admin.changed(ctx, h.m.Slug)
	flash.Add(c, "Record was successfully deleted.")
	return c.Redirect(http.StatusFound, "/admin/"+h.m.Slug)
}

func (h *moduleHandler) recordURL(id uint64) string {
	return "/admin/" + h.m.Slug + "/" + strconv.FormatUint(id, 10)
}

func (h *moduleHandler) bind(c echo.Context) Values {
	v := make(Values, len(h.m.Fields))
	for _, f := range h.m.Fields {
		v[f.Name] = c.FormValue(f.Name)
	}
	return v
}

// formError re-renders the form for a FieldError and passes every other
// error on to the HTTP error handler.
func (h *moduleHandler) formError(c echo.Context, action, title string, v Values, err error) error {
	var fe *FieldError
	if !errors.As(err, &fe) {
		return err
	}
	return h.renderForm(c, action, title, v, fe)
}

func (h *moduleHandler) renderForm(c echo.Context, action, title string, v Values, fe *FieldError) error {
	data := formData{Title: title, Action: action}
	for _, f := range h.m.Fields {
		ff := formField{Field: f, Value: v[f.Name]}
		if fe != nil && fe.Field == f.Name {
			ff.Error = fe.Msg
		}
		data.Fields = append(data.Fields, ff)
	}
	if fe != nil {
		data.Error = "Failed to save record."
	}
	return c.Render(http.StatusOK, "admin/form.html", data)
}

func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.ErrNotFound
	}
	return id, nil
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	return err
}
