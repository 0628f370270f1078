package repository

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestPrincipalRepository_FindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPrincipalRepository(db)

	rows := sqlmock.NewRows([]string{"id", "kind", "username", "email"}).
		AddRow(7, "admin", "root", "root@example.com")
	mock.ExpectQuery("SELECT \\* FROM `principals` WHERE \\(kind = \\? AND email = \\?\\)").
		WillReturnRows(rows)

	p, err := repo.FindByEmail(models.KindAdmin, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), p.ID)
	assert.Equal(t, models.KindAdmin, p.Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `principals`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByEmail(models.KindAdmin, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepository_CountByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPrincipalRepository(db)

	// no ids, no query
	count, err := repo.CountByIDs(models.KindDeveloper, nil)
	require.NoError(t, err)
	assert.Zero(t, count)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `principals`").
		WillReturnError(errors.New("connection reset"))

	_, err = repo.CountByIDs(models.KindDeveloper, []uint64{1, 2})
	assert.EqualError(t, err, "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepository_DeleteDeveloper(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `manager_members`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `project_assignments`").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `task_participants`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE `principals` SET `deleted_at`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(models.KindDeveloper, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepository_DeleteMissingRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `manager_members`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE `principals` SET `deleted_at`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(models.KindAdmin, 42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepository_AddMembersEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPrincipalRepository(db)

	require.NoError(t, repo.AddMembers(1, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
