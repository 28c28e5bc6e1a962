package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/julo-ch/www/internal/dbx"
	"github.com/julo-ch/www/internal/model"
)

// PageRepo stores flat pages keyed by path.
type PageRepo struct {
	db dbx.DBTX
}

func NewPageRepo(db dbx.DBTX) *PageRepo {
	return &PageRepo{db: db}
}

// NormalizePath strips surrounding whitespace and slashes so "/about/"
// and "about" address the same page.
func NormalizePath(p string) string {
	return strings.Trim(strings.TrimSpace(p), "/")
}

func (r *PageRepo) Create(ctx context.Context, p *model.Page) error {
	p.Path = NormalizePath(p.Path)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO pages (path, title, body) VALUES (?, ?, ?)", p.Path, p.Title, p.Body)
	if err != nil {
		if isDuplicate(err) {
			return ErrPathExists
		}
		return fmt.Errorf("insert page: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

func (r *PageRepo) GetByID(ctx context.Context, id uint64) (*model.Page, error) {
	return r.getOne(ctx, "SELECT id, path, title, body FROM pages WHERE id = ?", id)
}

// GetByPath is the flatpage lookup used by the public site.
func (r *PageRepo) GetByPath(ctx context.Context, path string) (*model.Page, error) {
	return r.getOne(ctx, "SELECT id, path, title, body FROM pages WHERE path = ? LIMIT 1", NormalizePath(path))
}

func (r *PageRepo) getOne(ctx context.Context, q string, arg any) (*model.Page, error) {
	var p model.Page
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(&p.ID, &p.Path, &p.Title, &p.Body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("select page: %w", err)
	}
	return &p, nil
}

// List returns all pages ordered by path.
func (r *PageRepo) List(ctx context.Context) ([]*model.Page, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, path, title, body FROM pages ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("select pages: %w", err)
	}
	defer rows.Close()
	var out []*model.Page
	for rows.Next() {
		p := &model.Page{}
		if err := rows.Scan(&p.ID, &p.Path, &p.Title, &p.Body); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PageRepo) Update(ctx context.Context, p *model.Page) error {
	p.Path = NormalizePath(p.Path)
	res, err := r.db.ExecContext(ctx,
		"UPDATE pages SET path = ?, title = ?, body = ? WHERE id = ?", p.Path, p.Title, p.Body, p.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrPathExists
		}
		return fmt.Errorf("update page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *PageRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM pages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPageNotFound
	}
	return nil
}
