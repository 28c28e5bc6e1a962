package model

// Page is a flat content page addressed by its URL path rather than
// by id. Path is stored without the leading slash, e.g. "about".
type Page struct {
	ID    uint64 // pages.id
	Path  string // pages.path
	Title string // pages.title
	Body  string // pages.body
}
