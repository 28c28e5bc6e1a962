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

// PostFields are the editable columns of a blog post. Created is stamped
// on insert and not editable.
var PostFields = []Field{
	{Name: "title", Label: "Title", Kind: Text},
	{Name: "body", Label: "Body", Kind: TextArea},
	{Name: "author", Label: "Author (user id)", Kind: Number},
}

// PostStore exposes the posts table to the panel.
type PostStore struct {
	posts *repository.PostRepo
	users *repository.UserRepo
}

func NewPostStore(db dbx.DBTX) *PostStore {
	return &PostStore{posts: repository.NewPostRepo(db), users: repository.NewUserRepo(db)}
}

func (s *PostStore) Columns() []string { return []string{"ID", "Title", "Author", "Created"} }

func (s *PostStore) List(ctx context.Context) ([]Row, error) {
	posts, err := s.posts.ListRecent(ctx, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
	}
	names, err := s.users.NamesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, Row{ID: p.ID, Cells: []string{
			strconv.FormatUint(p.ID, 10), p.Title, names[p.AuthorID], p.Created.UTC().Format("2006-01-02 15:04"),
		}})
	}
	return rows, nil
}

func (s *PostStore) Get(ctx context.Context, id uint64) (Values, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, mapPostErr(err)
	}
	return Values{"title": p.Title, "body": p.Body, "author": strconv.FormatUint(p.AuthorID, 10)}, nil
}

func (s *PostStore) Create(ctx context.Context, actor uint64, v Values) error {
	p, err := postFromValues(actor, v)
	if err != nil {
		return err
	}
	return mapPostErr(s.posts.Create(ctx, p))
}

func (s *PostStore) Update(ctx context.Context, actor, id uint64, v Values) error {
	p, err := postFromValues(actor, v)
	if err != nil {
		return err
	}
	p.ID = id
	return mapPostErr(s.posts.Update(ctx, p))
}

func (s *PostStore) Delete(ctx context.Context, id uint64) error {
	return mapPostErr(s.posts.Delete(ctx, id))
}

// postFromValues validates a submission. An empty author means the acting
// user.
func postFromValues(actor uint64, v Values) (*model.Post, error) {
	title := strings.TrimSpace(v["title"])
	switch {
	case title == "":
		return nil, &FieldError{Field: "title", Msg: "This field is required."}
	case utf8.RuneCountInString(title) > 60:
		return nil, &FieldError{Field: "title", Msg: "At most 60 characters."}
	}
	author := actor
	if raw := strings.TrimSpace(v["author"]); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, &FieldError{Field: "author", Msg: "Not a valid user id."}
		}
		author = id
	}
	if author == 0 {
		return nil, &FieldError{Field: "author", Msg: "This field is required."}
	}
	return &model.Post{Title: title, Body: v["body"], AuthorID: author}, nil
}

func mapPostErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrPostNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrAuthorNotFound):
		return &FieldError{Field: "author", Msg: "Author does not exist."}
	}
	return err
}
