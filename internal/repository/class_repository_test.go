package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

func TestCreateRecomputesIsScheduled(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewClassRepository(db)

	entryID := "e-1"
	mock.ExpectExec(`INSERT INTO classes`).
		WithArgs(sqlmock.AnyArg(), "cust-1", "ordinary", 25.0, "single",
			nil, &entryID, true, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	class := &models.Class{
		CustomerID: "cust-1",
		LessonType: models.LessonTypeOrdinary,
		BuyPrice:   25,
		BuySource:  models.BuySourceSingle,
		EntryID:    &entryID,
		Active:     true,
	}
	err := repo.Create(context.Background(), class)
	require.NoError(t, err)
	assert.True(t, class.IsScheduled, "the derived flag follows the entry reference")
	assert.NotEmpty(t, class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDWithTxLocksRow(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM classes WHERE id = \$1 FOR UPDATE`).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "lesson_type", "active", "is_scheduled"}).
			AddRow("c-1", "cust-1", "ordinary", true, false))

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	class, err := repo.FindByIDWithTx(context.Background(), tx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "c-1", class.ID)
	assert.False(t, class.IsScheduled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithTxClearsIsScheduled(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE classes SET entry_id = \$2, active = \$3, is_scheduled = \$4, updated_at = \$5 WHERE id = \$1`).
		WithArgs("c-1", nil, true, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	class := &models.Class{ID: "c-1", Active: true, IsScheduled: true}
	err = repo.UpdateWithTx(context.Background(), tx, class)
	require.NoError(t, err)
	assert.False(t, class.IsScheduled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetActiveBySubscriptionWithTx(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE classes SET active = \$2, updated_at = \$3 WHERE subscription_id = \$1`).
		WithArgs("sub-1", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 10))

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	err = repo.SetActiveBySubscriptionWithTx(context.Background(), tx, "sub-1", false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnscheduledLessonTypes(t *testing.T) {
	db, mock := newDBMock(t)
	repo := NewClassRepository(db)

	mock.ExpectQuery(`SELECT DISTINCT lesson_type FROM classes WHERE customer_id = \$1 AND entry_id IS NULL AND active = TRUE`).
		WithArgs("cust-1").
		WillReturnRows(sqlmock.NewRows([]string{"lesson_type"}).AddRow("ordinary").AddRow("paired"))

	types, err := repo.UnscheduledLessonTypes(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, []models.LessonType{models.LessonTypeOrdinary, models.LessonTypePaired}, types)
	assert.NoError(t, mock.ExpectationsWereMet())
}
