package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

func newDBMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxdb.Close() })
	return sqlxdb, mock
}

func workingHoursRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "teacher_id", "weekday", "start_time", "end_time", "created_at"})
}

func TestFindWorkingHoursPicksLowestID(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM working_hours WHERE teacher_id = \$1 AND weekday = \$2 ORDER BY id ASC LIMIT 1`).
		WithArgs("t-1", 1).
		WillReturnRows(workingHoursRows().AddRow("wh-1", "t-1", 1, "13:00", "15:00", time.Now()))

	hours, err := repo.FindWorkingHours(context.Background(), "t-1", 1)
	require.NoError(t, err)
	require.NotNil(t, hours)
	assert.Equal(t, "wh-1", hours.ID)
	assert.Equal(t, "13:00", hours.Start)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindWorkingHoursMissingIsNotAnError(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM working_hours`).
		WithArgs("t-1", 2).
		WillReturnError(sql.ErrNoRows)

	hours, err := repo.FindWorkingHours(context.Background(), "t-1", 2)
	require.NoError(t, err)
	assert.Nil(t, hours)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceWorkingHours(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM working_hours WHERE teacher_id = \$1`).
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO working_hours`).
		WithArgs(sqlmock.AnyArg(), "t-1", 1, "09:00", "12:00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO working_hours`).
		WithArgs(sqlmock.AnyArg(), "t-1", 3, "13:00", "18:00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReplaceWorkingHours(context.Background(), "t-1", []models.WorkingHours{
		{Weekday: 1, Start: "09:00", End: "12:00"},
		{Weekday: 3, Start: "13:00", End: "18:00"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceWorkingHoursRollsBackOnInsertFailure(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM working_hours`).
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO working_hours`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.ReplaceWorkingHours(context.Background(), "t-1", []models.WorkingHours{
		{Weekday: 1, Start: "09:00", End: "12:00"},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockWithTxUnknownTeacher(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM teachers WHERE id = \$1 FOR UPDATE`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	err = repo.LockWithTx(context.Background(), tx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
