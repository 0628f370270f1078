package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-hub-api/internal/models"
)

func TestHolidayRepository_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHolidayRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `holidays` SET `status`=\\?,`updated_at`=\\? WHERE id = \\? AND status NOT IN \\(\\?,\\?\\)").
		WithArgs(models.HolidayApproved, sqlmock.AnyArg(), 5, models.HolidayApproved, models.HolidayWithdrawn).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, err := repo.UpdateStatus(5, models.HolidayApproved,
		[]models.HolidayStatus{models.HolidayApproved, models.HolidayWithdrawn})
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayRepository_UpdateStatusClosed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHolidayRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `holidays` SET `status`=\\?").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	changed, err := repo.UpdateStatus(5, models.HolidayWithdrawn, []models.HolidayStatus{models.HolidayApproved})
	require.NoError(t, err)
	assert.Zero(t, changed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayRepository_UpdateDetailsLeavesStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHolidayRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `holidays` SET `start_date`=\\?,`end_date`=\\?,`reason`=\\?,`updated_at`=\\? WHERE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateDetails(&models.Holiday{ID: 5, Reason: "Moved", Status: models.HolidayPending}))
	require.NoError(t, mock.ExpectationsWereMet())
}
