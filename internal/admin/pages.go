package admin

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/julo-ch/www/internal/dbx"
	"github.com/julo-ch/www/internal/model"
	"github.com/julo-ch/www/internal/repository"
)

var PageFields = []Field{
	{Name: "path", Label: "Path", Kind: Text},
	{Name: "title", Label: "Title", Kind: Text},
	{Name: "body", Label: "Body", Kind: TextArea},
}

// reservedPaths are taken by fixed routes and can never be served as a
// flat page.
var reservedPaths = map[string]bool{
	"admin": true, "blog": true, "contact": true, "healthz": true,
	"login": true, "logout": true, "projects": true,
}

// PageStore exposes the pages table to the panel.
type PageStore struct {
	pages *repository.PageRepo
}

func NewPageStore(db dbx.DBTX) *PageStore {
	return &PageStore{pages: repository.NewPageRepo(db)}
}

func (s *PageStore) Columns() []string { return []string{"ID", "Path", "Title"} }

func (s *PageStore) List(ctx context.Context) ([]Row, error) {
	pages, err := s.pages.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(pages))
	for _, p := range pages {
		rows = append(rows, Row{ID: p.ID, Cells: []string{strconv.FormatUint(p.ID, 10), "/" + p.Path, p.Title}})
	}
	return rows, nil
}

func (s *PageStore) Get(ctx context.Context, id uint64) (Values, error) {
	p, err := s.pages.GetByID(ctx, id)
	if err != nil {
		return nil, mapPageErr(err)
	}
	return Values{"path": p.Path, "title": p.Title, "body": p.Body}, nil
}

func (s *PageStore) Create(ctx context.Context, _ uint64, v Values) error {
	p, err := pageFromValues(v)
	if err != nil {
		return err
	}
	return mapPageErr(s.pages.Create(ctx, p))
}

func (s *PageStore) Update(ctx context.Context, _, id uint64, v Values) error {
	p, err := pageFromValues(v)
	if err != nil {
		return err
	}
	p.ID = id
	return mapPageErr(s.pages.Update(ctx, p))
}

func (s *PageStore) Delete(ctx context.Context, id uint64) error {
	return mapPageErr(s.pages.Delete(ctx, id))
}

func pageFromValues(v Values) (*model.Page, error) {
	path := repository.NormalizePath(v["path"])
	switch {
	case path == "":
		return nil, &FieldError{Field: "path", Msg: "This field is required."}
	case strings.Contains(path, "/"):
		return nil, &FieldError{Field: "path", Msg: "A path is a single segment."}
	case reservedPaths[strings.ToLower(path)]:
		return nil, &FieldError{Field: "path", Msg: "This path is reserved."}
	case utf8.RuneCountInString(path) > 80:
		return nil, &FieldError{Field: "path", Msg: "At most 80 characters."}
	}
	title := strings.TrimSpace(v["title"])
	if utf8.RuneCountInString(title) > 80 {
		return nil, &FieldError{Field: "title", Msg: "At most 80 characters."}
	}
	return &model.Page{Path: path, Title: title, Body: v["body"]}, nil
}

func mapPageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrPageNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrPathExists):
		return &FieldError{Field: "path", Msg: "This path is already in use."}
	}
	return err
}
