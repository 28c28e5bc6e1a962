// Package repository contains data access logic separated from HTTP handlers.
// This file defines the post repository used by the blog, the Atom feed and
// the posts admin module.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julo-ch/www/internal/dbx"
	"github.com/julo-ch/www/internal/model"
)

const postColumns = "id, title, body, created, author"

// PostRepo encapsulates all database queries related to blog posts.
type PostRepo struct {
	db dbx.DBTX
}

func NewPostRepo(db dbx.DBTX) *PostRepo {
	return &PostRepo{db: db}
}

// Create inserts a post. Created is stamped here in UTC, and the author
// must exist; a dangling author yields ErrAuthorNotFound.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	p.Created = time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO posts (title, body, created, author) VALUES (?, ?, ?, ?)",
		p.Title, p.Body, p.Created, p.AuthorID)
	if err != nil {
		if isForeignKey(err) {
			return ErrAuthorNotFound
		}
		return fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a post or returns ErrPostNotFound.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (*model.Post, error) {
	var p model.Post
	err := r.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id).
		Scan(&p.ID, &p.Title, &p.Body, &p.Created, &p.AuthorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("select post: %w", err)
	}
	return &p, nil
}

// ListRecent returns posts newest first. A limit of zero or less means all.
func (r *PostRepo) ListRecent(ctx context.Context, limit int) ([]*model.Post, error) {
	q := "SELECT " + postColumns + " FROM posts ORDER BY created DESC, id DESC"
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	defer rows.Close()

	var out []*model.Post
	for rows.Next() {
		p := new(model.Post)
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.Created, &p.AuthorID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes title, body and author. Created is never touched.
func (r *PostRepo) Update(ctx context.Context, p *model.Post) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE posts SET title = ?, body = ?, author = ? WHERE id = ?",
		p.Title, p.Body, p.AuthorID, p.ID)
	if err != nil {
		if isForeignKey(err) {
			return ErrAuthorNotFound
		}
		return fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 for unchanged rows; tell that apart from a missing id.
		if _, err := r.GetByID(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a post.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPostNotFound
	}
	return nil
}
