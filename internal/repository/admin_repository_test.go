package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRepo_IsAuthorized(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAdminRepo(db)

	mock.ExpectQuery("SELECT 1 FROM admins").
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ok, err := repo.IsAuthorized(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdminRepo_Add(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAdminRepo(db)

	mock.ExpectExec("INSERT IGNORE INTO admins").
		WithArgs("42").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Add(context.Background(), "42"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepo_Add_ExistingCaller(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAdminRepo(db)

	// INSERT IGNORE reports zero affected rows for a duplicate; Add still
	// succeeds.
	mock.ExpectExec("INSERT IGNORE INTO admins").
		WithArgs("42").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Add(context.Background(), "42"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRepo_IsAuthorized_UnknownCaller(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAdminRepo(db)

	mock.ExpectQuery("SELECT 1 FROM admins").
		WithArgs("outsider").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err := repo.IsAuthorized(context.Background(), "outsider")
	require.NoError(t, err)
	assert.False(t, ok)
}
