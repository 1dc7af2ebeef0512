package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScriptMock(t *testing.T) (*ScriptRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewScriptRepo(db), mock
}

func scriptRows(scripts ...Script) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "filename", "description", "content", "enabled", "downloads", "created_at"})
	for _, s := range scripts {
		rows.AddRow(s.ID, s.Name, s.Filename, s.Description, s.Content, s.Enabled, s.Downloads, s.CreatedAt)
	}
	return rows
}

func TestScriptRepo_CreatePopulatesID(t *testing.T) {
	repo, mock := newScriptMock(t)

	mock.ExpectExec("INSERT INTO scripts").
		WithArgs("resizer", "resizer.lua", "resizes things", "print('hi')", true).
		WillReturnResult(sqlmock.NewResult(7, 1))

	s := &Script{Name: "resizer", Filename: "resizer.lua", Description: "resizes things", Content: "print('hi')", Enabled: true}
	require.NoError(t, repo.Create(context.Background(), s))
	assert.Equal(t, uint64(7), s.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScriptRepo_GetEnabledByID_NotFoundWhenDisabled(t *testing.T) {
	repo, mock := newScriptMock(t)

	mock.ExpectQuery("SELECT (.+) FROM scripts WHERE id = \\? AND enabled = TRUE").
		WithArgs(uint64(7)).
		WillReturnRows(scriptRows())

	_, err := repo.GetEnabledByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrScriptNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScriptRepo_GetByID(t *testing.T) {
	repo, mock := newScriptMock(t)
	want := Script{ID: 7, Name: "resizer", Filename: "resizer.lua", Description: "d", Content: "c", Enabled: false, Downloads: 3, CreatedAt: time.Now().UTC()}

	mock.ExpectQuery("SELECT (.+) FROM scripts WHERE id = \\?").
		WithArgs(uint64(7)).
		WillReturnRows(scriptRows(want))

	got, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestScriptRepo_ListInsertionOrder(t *testing.T) {
	repo, mock := newScriptMock(t)
	now := time.Now().UTC()
	first := Script{ID: 1, Name: "a", Filename: "a.lua", Content: "x", Enabled: true, CreatedAt: now}
	second := Script{ID: 2, Name: "b", Filename: "b.lua", Content: "y", Enabled: true, CreatedAt: now}

	mock.ExpectQuery("SELECT (.+) FROM scripts WHERE enabled = TRUE ORDER BY id").
		WillReturnRows(scriptRows(first, second))

	got, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].ID)
	assert.Equal(t, uint64(2), got[1].ID)
}

func TestScriptRepo_IncrementDownloads_NotFound(t *testing.T) {
	repo, mock := newScriptMock(t)

	mock.ExpectExec("UPDATE scripts SET downloads = downloads \\+ 1").
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementDownloads(context.Background(), 99)
	assert.ErrorIs(t, err, ErrScriptNotFound)
}

func TestScriptRepo_SetEnabled(t *testing.T) {
	repo, mock := newScriptMock(t)

	mock.ExpectExec("UPDATE scripts SET enabled = \\?").
		WithArgs(false, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetEnabled(context.Background(), 7, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScriptRepo_DeleteNotFound(t *testing.T) {
	repo, mock := newScriptMock(t)

	mock.ExpectExec("DELETE FROM scripts").
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 99), ErrScriptNotFound)
}

func TestScriptRepo_TotalDownloads(t *testing.T) {
	repo, mock := newScriptMock(t)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(downloads\\), 0\\) FROM scripts").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(12))

	got, err := repo.TotalDownloads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), got)
}
