package model

import "time"

// Post is a blog entry from the `posts` table. AuthorID is a foreign
// key into users.id and must reference an existing user.
//
// Fields:
//  ID       – primary key identifier.
//  Title    – headline, at most 60 characters.
//  Body     – markup source; rendered to HTML on display.
//  Created  – UTC creation time, set once on insert.
//  AuthorID – users.id of the writer.
type Post struct {
	ID       uint64    // posts.id
	Title    string    // posts.title
	Body     string    // posts.body
	Created  time.Time // posts.created
	AuthorID uint64    // posts.author
}
