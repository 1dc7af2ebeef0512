package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

func TestUserRepo_Credit(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("42", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT coins FROM users").
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"coins"}).AddRow(10))

	got, err := repo.Credit(context.Background(), "42", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreditRejectsNonPositiveAmount(t *testing.T) {
	repo, mock := newMock(t)

	for _, amount := range []int64{0, -5} {
		_, err := repo.Credit(context.Background(), "42", amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	// No SQL must be issued for an invalid amount.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Debit(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("UPDATE users SET coins = coins -").
		WithArgs(int64(5), "42", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT coins FROM users").
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"coins"}).AddRow(5))

	got, err := repo.Debit(context.Background(), "42", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_DebitInsufficientBalance(t *testing.T) {
	repo, mock := newMock(t)

	// The conditional UPDATE matches no row: underfunded and unknown users
	// look identical, which is exactly the zero-default policy.
	mock.ExpectExec("UPDATE users SET coins = coins -").
		WithArgs(int64(50), "42", int64(50)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Debit(context.Background(), "42", 50)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_DebitRejectsNonPositiveAmount(t *testing.T) {
	repo, mock := newMock(t)

	_, err := repo.Debit(context.Background(), "42", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_BalanceUnknownUserIsZero(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT coins FROM users").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"coins"}))

	got, err := repo.Balance(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Count(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))

	got, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}
