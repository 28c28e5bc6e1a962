package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julo-ch/www/internal/model"
)

func TestPostRepo_CreateResolvesAuthor(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "a@x.com", "Alexander", "Jung")
	repo := NewPostRepo(db)
	ctx := context.Background()

	p := &model.Post{Title: "Hello", Body: "*world*", AuthorID: u.ID}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)
	assert.WithinDuration(t, time.Now().UTC(), p.Created, 5*time.Second)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.AuthorID)
	assert.Equal(t, "Hello", got.Title)
	assert.True(t, p.Created.Equal(got.Created))
}

func TestPostRepo_UnknownAuthorRejected(t *testing.T) {
	repo := NewPostRepo(setupDB(t))

	err := repo.Create(context.Background(), &model.Post{Title: "x", Body: "y", AuthorID: 77})
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}

func TestPostRepo_ListRecentNewestFirst(t *testing.T) {
	db := setupDB(t)
	u := seedUser(t, db, "a@x.com", "A", "X")
	ctx := context.Background()

	// created has second precision; write rows directly to control ordering.
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		_, err := db.ExecContext(ctx, "INSERT INTO posts (title, body, created, author) VALUES (?, ?, ?, ?)",
			title, "b", base.Add(time.Duration(i)*time.Hour), u.ID)
		require.NoError(t, err)
	}

	repo := NewPostRepo(db)
	all, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Title)
	assert.Equal(t, "first", all[2].Title)

	two, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestPostRepo_UpdateAndDelete(t *testing.T) {
	db := setupDB(t)
	a := seedUser(t, db, "a@x.com", "A", "X")
	b := seedUser(t, db, "b@x.com", "B", "Y")
	repo := NewPostRepo(db)
	ctx := context.Background()

	p := &model.Post{Title: "t", Body: "b", AuthorID: a.ID}
	require.NoError(t, repo.Create(ctx, p))

	p.Title, p.AuthorID = "t2", b.ID
	require.NoError(t, repo.Update(ctx, p))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "t2", got.Title)
	assert.Equal(t, b.ID, got.AuthorID)

	p.AuthorID = 999
	assert.ErrorIs(t, repo.Update(ctx, p), ErrAuthorNotFound)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), ErrPostNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &model.Post{ID: p.ID, Title: "x", AuthorID: a.ID}), ErrPostNotFound)
}
