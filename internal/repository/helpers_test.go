package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/julo-ch/www/internal/config"
	"github.com/julo-ch/www/internal/database"
	"github.com/julo-ch/www/internal/model"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func seedUser(t *testing.T, db *sql.DB, email, first, last string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplaceho", FirstName: first, LastName: last, Active: true}
	_, err := NewUserRepo(db).Create(context.Background(), u)
	require.NoError(t, err)
	return u
}
