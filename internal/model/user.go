package model

import "time"

// User represents an account record as stored in the `users` table.
// Each field corresponds to a column in the database. The json tags
// are omitted because these structs are used by the repository and
// session layers; templates read the exported fields directly.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique, lower-cased email address.
//  PasswordHash  – bcrypt digest of the password (60 characters).
//  FirstName     – given name shown as post author.
//  LastName      – family name shown as post author.
//  Active        – whether the account may log in at all.
//  Authenticated – persisted flag, true between login and logout.
type User struct {
	ID            uint64 // users.id
	Email         string // users.email
	PasswordHash  string // users.password
	FirstName     string // users.firstname
	LastName      string // users.lastname
	Active        bool   // users.active
	Authenticated bool   // users.authenticated
}

// FullName joins first and last name the way the blog prints authors.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Session models an entry in the `sessions` table. Each row belongs
// to a user and carries expiry and revocation metadata. The raw
// session token lives only in the client's cookie; the table stores
// its SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the session was ended (nil while active).
//  CreatedAt – timestamp of creation.
type Session struct {
	ID        uint64     // sessions.id
	UserID    uint64     // sessions.user_id
	TokenHash string     // sessions.token_hash
	ExpiresAt time.Time  // sessions.expires_at
	RevokedAt *time.Time // sessions.revoked_at (nullable)
	CreatedAt time.Time  // sessions.created_at
}
